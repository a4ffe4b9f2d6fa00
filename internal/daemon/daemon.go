package daemon

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/leonardotrapani/hyprnote/internal/bus"
	"github.com/leonardotrapani/hyprnote/internal/capture"
	"github.com/leonardotrapani/hyprnote/internal/composer"
	"github.com/leonardotrapani/hyprnote/internal/config"
	"github.com/leonardotrapani/hyprnote/internal/notes"
	"github.com/leonardotrapani/hyprnote/internal/notify"
	"github.com/leonardotrapani/hyprnote/internal/recognition"
)

type Options struct {
	Config *config.Config
	// Manager, when set, is watched for changes and overrides Config.
	Manager *config.Manager
	// Platform overrides the platform built from the config.
	Platform recognition.Platform
	// Notifier overrides the notifier built from the config.
	Notifier notify.Notifier
}

type Daemon struct {
	ctx    context.Context
	cancel context.CancelFunc

	manager    *config.Manager
	platform   *switchPlatform
	notifier   *switchNotifier
	notes      *notes.Collection
	controller *capture.Controller
	composer   *composer.Composer

	fixedPlatform bool
	fixedNotifier bool
}

func New(opts Options) *Daemon {
	cfg := opts.Config
	if opts.Manager != nil {
		cfg = opts.Manager.GetConfig()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	platform := opts.Platform
	if platform == nil {
		platform = recognition.NewPlatform(cfg.ToRecognitionConfig())
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = cfg.NewNotifier()
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Daemon{
		ctx:           ctx,
		cancel:        cancel,
		manager:       opts.Manager,
		platform:      &switchPlatform{current: platform},
		notifier:      &switchNotifier{current: notifier},
		notes:         notes.NewCollection(),
		fixedPlatform: opts.Platform != nil,
		fixedNotifier: opts.Notifier != nil,
	}
	d.controller = capture.New(d.platform)
	d.composer = composer.New(composer.Options{
		Controller: d.controller,
		Notes:      d.notes,
		Notifier:   d.notifier,
		Language:   cfg.Recognition.Language,
		OnChange: func(s composer.State) {
			log.Printf("Daemon: composer state %s (%d chars)", s.Mode, len(s.Draft))
		},
	})

	if d.manager != nil {
		d.manager.OnReload(d.applyConfig)
	}
	return d
}

func (d *Daemon) Composer() *composer.Composer { return d.composer }
func (d *Daemon) Notes() *notes.Collection     { return d.notes }

// applyConfig swaps in what changed after a config reload. A recording in
// progress keeps the source it started with.
func (d *Daemon) applyConfig(cfg *config.Config) {
	if err := d.composer.SetLanguage(cfg.Recognition.Language); err != nil {
		log.Printf("Daemon: ignoring language from reloaded config: %v", err)
	}
	if !d.fixedPlatform {
		d.platform.set(recognition.NewPlatform(cfg.ToRecognitionConfig()))
	}
	if !d.fixedNotifier {
		d.notifier.set(cfg.NewNotifier())
	}
	d.notifier.Send(notify.MsgConfigReloaded)
}

func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	if d.manager != nil {
		if err := d.manager.StartWatching(d.ctx); err != nil {
			log.Printf("Daemon: config watching disabled: %v", err)
		}
		defer d.manager.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			log.Printf("Received signal %v, shutting down gracefully", sig)
			d.cancel()
		case <-d.ctx.Done():
		}
	}()

	return d.serve(ln)
}

// serve accepts connections until the daemon is told to quit.
func (d *Daemon) serve(ln net.Listener) error {
	// Close the listener when context is done
	go func() {
		<-d.ctx.Done()
		ln.Close()
	}()

	if d.platform.Available() {
		log.Printf("Daemon started, listening on socket")
	} else {
		log.Printf("Daemon started without speech recognition; notes can only be typed")
	}

	var wg sync.WaitGroup
	defer func() {
		wg.Wait()
		d.controller.Stop()
	}()

	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				log.Printf("Shutdown requested")
				return nil
			}
			log.Printf("Accept error: %v", err)
			return fmt.Errorf("accept failed: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.handle(c)
		}()
	}
}

// Shutdown stops the daemon as the quit command does.
func (d *Daemon) Shutdown() {
	d.cancel()
}

const requestTimeout = 10 * time.Second

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()
	_ = c.SetReadDeadline(time.Now().Add(requestTimeout))

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Printf("Client read error: %v", err)
		fmt.Fprintln(c, bus.FormatError(bus.CodeBadRequest, err.Error()))
		return
	}

	req, err := bus.ParseRequest(line)
	if err != nil {
		fmt.Fprintln(c, bus.FormatError(bus.CodeBadRequest, err.Error()))
		return
	}

	fmt.Fprintln(c, d.dispatch(req))
}

// dispatch runs one request and returns the response line.
func (d *Daemon) dispatch(req bus.Request) string {
	switch req.Verb {
	case bus.VerbRecord:
		if err := d.composer.StartRecording(d.ctx); err != nil {
			return errorLine(err)
		}
		return bus.FormatOK("recording")

	case bus.VerbStop:
		if err := d.composer.StopRecording(); err != nil {
			return errorLine(err)
		}
		return bus.FormatOK("stopped")

	case bus.VerbText:
		if err := d.composer.UseText(); err != nil {
			return errorLine(err)
		}
		return bus.FormatOK("text_entry")

	case bus.VerbDraft:
		if err := d.composer.UpdateDraft(req.Arg); err != nil {
			return errorLine(err)
		}
		return d.statusLine()

	case bus.VerbSubmit:
		n, ok, err := d.composer.Submit()
		if err != nil {
			return errorLine(err)
		}
		if !ok {
			return bus.FormatError(bus.CodeUnavailable, "nothing to submit")
		}
		return bus.FormatOK(n.ID)

	case bus.VerbStatus:
		return d.statusLine()

	case bus.VerbNotes:
		line, err := bus.FormatNotes(nonNil(d.notes.Search(req.Arg)))
		if err != nil {
			return errorLine(err)
		}
		return line

	case bus.VerbDelete:
		if req.Arg == "" {
			return bus.FormatError(bus.CodeBadRequest, "delete needs a note id")
		}
		if !d.composer.Delete(req.Arg) {
			return bus.FormatError(bus.CodeNotFound, fmt.Sprintf("no note with id %s", req.Arg))
		}
		return bus.FormatOK("deleted")

	case bus.VerbVersion:
		return bus.FormatOK("proto=" + bus.ProtoVer)

	case bus.VerbQuit:
		d.cancel()
		return bus.FormatOK("quitting")

	default:
		log.Printf("Unknown command: %q", req.Verb)
		return bus.FormatError(bus.CodeUnknown, fmt.Sprintf("unknown command %q", req.Verb))
	}
}

func (d *Daemon) statusLine() string {
	s := d.composer.State()
	return bus.FormatStatus(bus.Status{Mode: s.Mode.String(), Draft: s.Draft})
}

func errorLine(err error) string {
	switch {
	case errors.Is(err, composer.ErrActionUnavailable):
		return bus.FormatError(bus.CodeUnavailable, err.Error())
	case errors.Is(err, capture.ErrFeatureUnavailable):
		return bus.FormatError(bus.CodeFeatureUnavailable, err.Error())
	default:
		return bus.FormatError(bus.CodeInternal, err.Error())
	}
}

func nonNil(list []notes.Note) []notes.Note {
	if list == nil {
		return []notes.Note{}
	}
	return list
}
