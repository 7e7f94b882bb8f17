package controller

import (
	"context"
	"time"
)

// recorder keeps a log of the session. It is satisfied by *twchart.Client
type recorder interface {
	CreateSession(ctx context.Context, name string) (string, error)
	SetStartTime(ctx context.Context, startTime time.Time) error
	AddEvent(ctx context.Context, note string, now time.Time) error
	AddStage(ctx context.Context, name string, now time.Time) error
	Done(ctx context.Context) error
}

type noopRecorder struct{}

var _ recorder = noopRecorder{}

func (noopRecorder) CreateSession(context.Context, string) (string, error) { return "", nil }
func (noopRecorder) SetStartTime(context.Context, time.Time) error         { return nil }
func (noopRecorder) AddEvent(context.Context, string, time.Time) error     { return nil }
func (noopRecorder) AddStage(context.Context, string, time.Time) error     { return nil }
func (noopRecorder) Done(context.Context) error                            { return nil }
