package main

import "github.com/d60-Lab/ibp/internal/app"

// @title IBP API
// @version 1.0
// @description Inside Books Project case management: inmate lookup, requests and shipping.
// @BasePath /
// @securityDefinitions.apikey AppKey
// @in header
// @name X-App-Key
func main() {
	app.Execute()
}
