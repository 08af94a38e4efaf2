//go:build windows

package winsvc

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/eventlog"
	"golang.org/x/sys/windows/svc/mgr"
)

const stopTimeout = 30 * time.Second

// eventLogWriter sends every log line to the Windows Event Log as an
// informational message.
type eventLogWriter struct {
	elog *eventlog.Log
}

func (w *eventLogWriter) Write(p []byte) (int, error) {
	if err := w.elog.Info(1, string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *eventLogWriter) Close() error { return w.elog.Close() }

// EventLog opens the named event source as a log destination.
func EventLog(name string) (io.WriteCloser, error) {
	elog, err := eventlog.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open event log %s: %w", name, err)
	}
	return &eventLogWriter{elog: elog}, nil
}

// IsWindowsService reports whether the process was started by the service
// control manager.
func IsWindowsService() bool {
	ok, err := svc.IsWindowsService()
	if err != nil {
		return false
	}
	return ok
}

// handler runs a long-lived function until it returns or the service
// control manager asks it to stop.
type handler struct {
	name string
	log  *log.Helper
	run  func(ctx context.Context) error
}

func (h *handler) Execute(_ []string, req <-chan svc.ChangeRequest, status chan<- svc.Status) (bool, uint32) {
	const accepted = svc.AcceptStop | svc.AcceptShutdown
	status <- svc.Status{State: svc.StartPending}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.run(ctx)
	}()

	status <- svc.Status{State: svc.Running, Accepts: accepted}

	for {
		select {
		case err := <-errCh:
			status <- svc.Status{State: svc.StopPending}
			if err != nil {
				h.log.Errorf("Service %s stopped: %v", h.name, err)
				return false, 1
			}
			return false, 0

		case cr := <-req:
			switch cr.Cmd {
			case svc.Interrogate:
				status <- cr.CurrentStatus
			case svc.Stop, svc.Shutdown:
				status <- svc.Status{State: svc.StopPending}
				cancel()
				select {
				case <-errCh:
				case <-time.After(stopTimeout):
					h.log.Warnf("Service %s: timed out waiting for collection to stop", h.name)
				}
				return false, 0
			}
		}
	}
}

// RunService runs the named service and blocks until it stops. run gets a
// context cancelled on a stop or shutdown request.
func RunService(name string, logger log.Logger, run func(ctx context.Context) error) error {
	return svc.Run(name, &handler{
		name: name,
		log:  log.NewHelper(log.With(logger, "module", "winsvc")),
		run:  run,
	})
}

// Install registers the service with automatic start and restart on
// failure, and creates its event log source.
func Install(c Config, logger log.Logger) error {
	if err := c.Validate(); err != nil {
		return err
	}

	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("connect to SCM: %w", err)
	}
	defer m.Disconnect()

	if s, err := m.OpenService(c.Name); err == nil {
		s.Close()
		return fmt.Errorf("service %s already exists", c.Name)
	}

	s, err := m.CreateService(c.Name, c.ExePath, mgr.Config{
		DisplayName: c.DisplayName,
		Description: c.Description,
		StartType:   mgr.StartAutomatic,
	}, c.Args...)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	defer s.Close()

	_ = s.SetRecoveryActions([]mgr.RecoveryAction{
		{Type: mgr.ServiceRestart, Delay: 10 * time.Second},
		{Type: mgr.ServiceRestart, Delay: 30 * time.Second},
		{Type: mgr.NoAction},
	}, 86400)

	if err := eventlog.InstallAsEventCreate(c.Name, eventlog.Error|eventlog.Warning|eventlog.Info); err != nil {
		log.NewHelper(logger).Warnf("could not install event log source: %v", err)
	}
	return nil
}

// Uninstall stops the named service if it is running, then removes it and
// its event log source.
func Uninstall(name string) error {
	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("connect to SCM: %w", err)
	}
	defer m.Disconnect()

	s, err := m.OpenService(name)
	if err != nil {
		return fmt.Errorf("open service %s: %w", name, err)
	}
	defer s.Close()

	if status, err := s.Query(); err == nil && status.State != svc.Stopped {
		_, _ = s.Control(svc.Stop)
		for range 10 {
			time.Sleep(500 * time.Millisecond)
			status, err = s.Query()
			if err != nil || status.State == svc.Stopped {
				break
			}
		}
	}

	if err := s.Delete(); err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	_ = eventlog.Remove(name)
	return nil
}
