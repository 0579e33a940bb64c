package schema

import "time"

type commentInput struct {
	Author *string `json:"author" validate:"required,min=1"`
	Body   *string `json:"body" validate:"required,min=1"`
}

// CommentFields are the writable comment fields.
type CommentFields struct {
	Author string
	Body   string
}

// LoadComment validates a comment payload.
func LoadComment(data []byte) (CommentFields, error) {
	var in commentInput
	if err := load(data, &in); err != nil {
		return CommentFields{}, err
	}
	return CommentFields{Author: *in.Author, Body: *in.Body}, nil
}

type requestInput struct {
	DatePostmarked *string `json:"date_postmarked" validate:"required,isodate"`
	Action         *string `json:"action" validate:"required,oneof=Tossed Filled"`
}

// RequestFields are the writable request fields.
type RequestFields struct {
	DatePostmarked time.Time
	Action         string
}

// LoadRequest validates a request payload.
func LoadRequest(data []byte) (RequestFields, error) {
	var in requestInput
	if err := load(data, &in); err != nil {
		return RequestFields{}, err
	}
	return RequestFields{DatePostmarked: parseDate(*in.DatePostmarked), Action: *in.Action}, nil
}

type shipmentInput struct {
	DateShipped  *string `json:"date_shipped" validate:"omitempty,isodate"`
	TrackingURL  *string `json:"tracking_url"`
	TrackingCode *string `json:"tracking_code"`
	Weight       *int    `json:"weight" validate:"omitempty,gte=0"`
	Postage      *int    `json:"postage" validate:"omitempty,gte=0"`
}

// ShipmentFields holds the provided shipment fields; nil means absent.
type ShipmentFields struct {
	DateShipped  *time.Time
	TrackingURL  string
	TrackingCode string
	Weight       *int
	Postage      *int
}

// LoadShipment validates a shipment payload. No field is required.
func LoadShipment(data []byte) (ShipmentFields, error) {
	var in shipmentInput
	if err := load(data, &in); err != nil {
		return ShipmentFields{}, err
	}
	out := ShipmentFields{Weight: in.Weight, Postage: in.Postage}
	if in.DateShipped != nil {
		d := parseDate(*in.DateShipped)
		out.DateShipped = &d
	}
	if in.TrackingURL != nil {
		out.TrackingURL = *in.TrackingURL
	}
	if in.TrackingCode != nil {
		out.TrackingCode = *in.TrackingCode
	}
	return out, nil
}
