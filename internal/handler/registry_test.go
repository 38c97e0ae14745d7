package handler_test

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/engine"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/handler"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/smtpconn"
)

func newRegisteredRun(t *testing.T) (*handler.RunRegistry, *handler.Run) {
	t.Helper()
	conns := smtpconn.NewManager(okDialer{}, staticCreds{}, zerolog.Nop())
	ctl := engine.New(engine.Config{}, conns, nil, zerolog.Nop())
	rr := handler.NewRunRegistry()
	return rr, rr.Add(ctl)
}

func TestRunResultLifecycle(t *testing.T) {
	rr, run := newRegisteredRun(t)

	got, ok := rr.Get(run.Controller.ID())
	require.True(t, ok)
	require.Same(t, run, got)

	report, done, err := run.Result()
	require.False(t, done)
	require.NoError(t, err)
	require.Nil(t, report)

	run.Complete(nil, errors.New("run blew up"))
	report, done, err = run.Result()
	require.True(t, done)
	require.EqualError(t, err, "run blew up")
	require.Nil(t, report)
}

func TestRegistryUnknownID(t *testing.T) {
	rr, _ := newRegisteredRun(t)
	_, ok := rr.Get("missing")
	require.False(t, ok)
}
