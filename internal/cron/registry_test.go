package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type namedJob struct {
	name string
}

func (j namedJob) Name() string                  { return j.name }
func (j namedJob) Run(ctx context.Context) error { return nil }

func TestRegistrySkipsNilJobsAndKeepsOrder(t *testing.T) {
	registry := NewRegistry(namedJob{name: "request-ttl"}, nil, namedJob{name: "notification-cleanup"})
	registry.Register(nil)
	registry.Register(namedJob{name: "third"})

	jobs := registry.Jobs()
	assert.Len(t, jobs, 3)
	assert.Equal(t, "request-ttl", jobs[0].Name())
	assert.Equal(t, "notification-cleanup", jobs[1].Name())
	assert.Equal(t, "third", jobs[2].Name())
}
