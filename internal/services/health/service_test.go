package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestStatusWithoutDatabase(t *testing.T) {
	body, ok := NewService(nil).Status(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "memory", body["storage"])
}

func TestStatusReportsDatabase(t *testing.T) {
	healthy := NewService(pingFunc(func(context.Context) error { return nil }))
	body, ok := healthy.Status(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "postgres", body["storage"])

	down := NewService(pingFunc(func(context.Context) error { return errors.New("refused") }))
	body, ok = down.Status(context.Background())
	assert.False(t, ok)
	assert.Equal(t, false, body["ok"])
	assert.NotContains(t, body["error"], "refused")
}
