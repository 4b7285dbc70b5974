// Command fan-sentinel emulates the locked-rotor fault signal of a
// commercial fan controller from observed tachometer inputs, for
// multiple independent channels. It publishes channel transitions to
// MQTT and serves a status page over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sweeney/fan-sentinel/internal/gpio"
	"github.com/sweeney/fan-sentinel/internal/hwtimer"
	"github.com/sweeney/fan-sentinel/internal/logic"
	"github.com/sweeney/fan-sentinel/internal/mqtt"
	"github.com/sweeney/fan-sentinel/internal/status"
	"github.com/sweeney/fan-sentinel/internal/ticks"
	"github.com/sweeney/fan-sentinel/internal/web"
)

func main() {
	poll := flag.Duration("poll", 2*time.Millisecond, "tachometer polling interval")
	tickPeriod := flag.Duration("tick-period", hwtimer.DefaultPeriod, "duration of one clock tick")
	powerOn := flag.Duration("power-on", 0, "start-up delay with the fault line floating")
	spinUp := flag.Duration("spin-up", 5*time.Second, "spin-up time with the fault line held low (integer multiple of -sample)")
	sample := flag.Duration("sample", time.Second, "toggle-counting window length")
	threshold := flag.Uint("threshold", 40, "minimum tach toggles per window for a healthy verdict (40=600RPM, 52=780RPM, 64=960RPM)")
	pins := flag.String("pins", defaultPinSpec(), "channel pin pairs as tach:fault[,tach:fault...] (BCM numbering)")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", ":80", "HTTP status address (empty to disable)")
	printState := flag.Bool("print-state", false, "print current tach levels and exit")

	flag.Parse()

	if err := run(*poll, *tickPeriod, *powerOn, *spinUp, *sample, uint32(*threshold), *pins, *broker, *heartbeat, *httpAddr, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(poll, tickPeriod, powerOn, spinUp, sample time.Duration, threshold uint32, pinSpec, broker string, heartbeat time.Duration, httpAddr string, printState bool) error {
	pins, err := parsePins(pinSpec)
	if err != nil {
		return fmt.Errorf("parse pins: %w", err)
	}

	cfg := logic.Config{
		PowerOnTicks:    ticks.FromDuration(powerOn, tickPeriod),
		SpinUpTicks:     ticks.FromDuration(spinUp, tickPeriod),
		SampleTicks:     ticks.FromDuration(sample, tickPeriod),
		ToggleThreshold: threshold,
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Initialize GPIO
	channels := make([]gpio.Channel, 0, len(pins))
	for _, p := range pins {
		ch, err := gpio.NewRealChannel(p)
		if err != nil {
			for _, open := range channels {
				open.Close()
			}
			return fmt.Errorf("init gpio (tach %d, fault %d): %w", p.Tach, p.Fault, err)
		}
		channels = append(channels, ch)
	}
	defer func() {
		for _, ch := range channels {
			ch.Close()
		}
	}()

	// Print state mode
	if printState {
		for i, ch := range channels {
			level, err := ch.ReadInput()
			if err != nil {
				return fmt.Errorf("read channel %d: %w", i, err)
			}
			fmt.Printf("fan%d tach: %s\n", i, levelString(level))
		}
		return nil
	}

	// Initialize the tick clock
	clock := ticks.New(hwtimer.NewHostTimer(tickPeriod, hwtimer.DefaultModulus))
	clock.Init()

	detectors := make([]*logic.Detector, len(channels))
	for i := range detectors {
		detectors[i] = logic.NewDetector(cfg)
	}

	// Initialize MQTT
	publisher := mqtt.NewRealPublisher(broker)
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), len(channels), status.Config{
		PollMs:          poll.Milliseconds(),
		TickPeriodUs:    tickPeriod.Microseconds(),
		PowerOnTicks:    uint32(cfg.PowerOnTicks),
		SpinUpTicks:     uint32(cfg.SpinUpTicks),
		SampleTicks:     uint32(cfg.SampleTicks),
		ToggleThreshold: cfg.ToggleThreshold,
		Broker:          broker,
		HTTPPort:        httpAddr,
	})

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: channels=%d poll=%v tick=%v sample=%d spin-up=%d power-on=%d threshold=%d broker=%s",
		len(channels), poll, tickPeriod, cfg.SampleTicks, cfg.SpinUpTicks, cfg.PowerOnTicks, threshold, broker)

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	hb := logic.NewHeartbeat(clock.Now(), ticks.FromDuration(heartbeat, tickPeriod))

	return runLoop(channels, detectors, publisher, publisher, tracker, hb, clock.Now, time.Now, ticker.C, sigCh)
}

func runLoop(channels []gpio.Channel, detectors []*logic.Detector, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, hb *logic.Heartbeat, nowTicks func() ticks.Ticks, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			// One clock read per iteration keeps the channels
			// phase-aligned: every detector steps with this timestamp.
			t := nowTicks()

			for i, d := range detectors {
				level, err := channels[i].ReadInput()
				if err != nil {
					log.Printf("channel %d: tach read error: %v", i, err)
					continue
				}

				out, events := d.Step(logic.Input{Level: level, Now: t})

				if err := applyOutput(channels[i], out); err != nil {
					log.Printf("channel %d: fault line error: %v", i, err)
				}

				for _, e := range events {
					log.Printf("channel %d: %s (state=%s output=%s ticks=%d)", i, e.Type, d.State(), out, e.At)
					ce := mqtt.ChannelEvent{
						Timestamp: now(),
						Channel:   i,
						Event:     e,
						State:     d.State(),
						Output:    out,
					}
					if err := publisher.Publish(ce); err != nil {
						log.Printf("publish error: %v", err)
						// Don't crash on publish failure
					}
				}

				if tracker != nil {
					tracker.UpdateChannel(i, status.ChannelStatus{
						State:          d.State(),
						Output:         out,
						UnderThreshold: d.UnderThreshold(),
						Toggles:        d.Toggles(),
						Counts:         d.EventCountsSnapshot(),
					})
				}
			}

			if tracker != nil {
				tracker.SetTicks(t)
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			// Check for heartbeat
			var counts logic.EventCounts
			if tracker != nil {
				counts = tracker.TotalCounts()
			}
			if hbData := hb.Check(t, counts); hbData != nil {
				log.Printf("heartbeat: uptime=%d ticks locked=%d healthy=%d windows=%d",
					hbData.Uptime, hbData.Counts.Locked, hbData.Counts.Healthy, hbData.Counts.Windows)

				hbEvent := mqtt.SystemEvent{
					Timestamp: now(),
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// applyOutput drives the fault line to the demanded level. Both
// operations are idempotent, so applying every step is safe.
func applyOutput(ch gpio.Channel, out logic.Output) error {
	if out == logic.OutputDriveLow {
		return ch.DriveLow()
	}
	return ch.FloatHigh()
}

// parsePins parses "tach:fault[,tach:fault...]" into pin pairs.
func parsePins(spec string) ([]gpio.Pins, error) {
	var pins []gpio.Pins
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		tach, fault, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("pin pair %q: want tach:fault", pair)
		}
		t, err := strconv.Atoi(strings.TrimSpace(tach))
		if err != nil {
			return nil, fmt.Errorf("tach pin %q: %w", tach, err)
		}
		f, err := strconv.Atoi(strings.TrimSpace(fault))
		if err != nil {
			return nil, fmt.Errorf("fault pin %q: %w", fault, err)
		}
		pins = append(pins, gpio.Pins{Tach: t, Fault: f})
	}
	if len(pins) == 0 {
		return nil, fmt.Errorf("no channels configured")
	}
	return pins, nil
}

func defaultPinSpec() string {
	parts := make([]string, len(gpio.DefaultPins))
	for i, p := range gpio.DefaultPins {
		parts[i] = fmt.Sprintf("%d:%d", p.Tach, p.Fault)
	}
	return strings.Join(parts, ",")
}

func levelString(level bool) string {
	if level {
		return "HIGH"
	}
	return "LOW"
}
