package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/ibp/internal/model"
	"github.com/d60-Lab/ibp/pkg/logger"
)

// AlertNotifier delivers one alert about mail from an inmate.
type AlertNotifier interface {
	Notify(ctx context.Context, in *model.Inmate, alert model.Alert) error
}

// AlertMessage is published for each alert; a mailer subscribes to the channel.
type AlertMessage struct {
	AlertID      uint      `json:"alert_id"`
	Requester    string    `json:"requester"`
	Email        string    `json:"email"`
	Jurisdiction string    `json:"jurisdiction"`
	InmateID     int64     `json:"inmate_id"`
	InmateName   string    `json:"inmate_name"`
	SentAt       time.Time `json:"sent_at"`
}

// RedisNotifier publishes alert messages on a pub/sub channel.
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
}

func NewRedisNotifier(rdb *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, channel: channel}
}

func (n *RedisNotifier) Notify(ctx context.Context, in *model.Inmate, a model.Alert) error {
	b, err := json.Marshal(AlertMessage{
		AlertID:      a.AutoID,
		Requester:    a.Requester,
		Email:        a.Email,
		Jurisdiction: in.Jurisdiction,
		InmateID:     in.ID,
		InmateName:   fmt.Sprintf("%s %s", in.FirstName, in.LastName),
		SentAt:       time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, n.channel, b).Err()
}

// LogNotifier only logs; used when redis is not configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, in *model.Inmate, a model.Alert) error {
	logger.Info("inmate alert",
		zap.Uint("alert", a.AutoID),
		zap.String("requester", a.Requester),
		zap.String("jurisdiction", in.Jurisdiction),
		zap.Int64("inmate_id", in.ID),
	)
	return nil
}
