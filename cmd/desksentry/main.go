package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ayusman/desksentry/internal/capture"
	"github.com/ayusman/desksentry/internal/config"
	"github.com/ayusman/desksentry/internal/detector"
	"github.com/ayusman/desksentry/internal/dnd"
	"github.com/ayusman/desksentry/internal/hardware"
	"github.com/ayusman/desksentry/internal/kinematics"
	"github.com/ayusman/desksentry/internal/metrics"
	"github.com/ayusman/desksentry/internal/orchestrator"
	"github.com/ayusman/desksentry/internal/server"
	"github.com/ayusman/desksentry/internal/store"
	"github.com/ayusman/desksentry/internal/tray"
	"github.com/ayusman/desksentry/internal/trigger"
	"github.com/ayusman/desksentry/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	rest := kinematics.Angles{A1: cfg.RestAngle1, A2: cfg.RestAngle2}
	mapper := kinematics.NewMapper(loadCalibration(st),
		kinematics.AngleRange{Min: cfg.AngleMin, Max: cfg.AngleMax}, rest)

	det := newDetector(cfg)
	defer det.Close()

	flag := dnd.NewCell(cfg.DNDMaxAge)
	machine := trigger.NewMachine(cfg.MinDetectionFrames, cfg.CooldownPeriod)

	// The rig talks to GPIO/PWM drivers supplied at deployment; the
	// in-tree build runs against the recording mock so the whole loop
	// can be exercised without hardware attached.
	rig := hardware.NewMockRig()
	sequencer := hardware.NewSequencer(rig, hardware.SequencerConfig{
		Rest:        rest,
		SettleDelay: cfg.SettleDelay,
		StepTimeout: cfg.StepTimeout,
	})

	orch := orchestrator.New(
		orchestrator.Config{TickInterval: cfg.TickInterval, SprayDuration: cfg.SprayDuration},
		det,
		vision.NewFuser(vision.Thresholds{
			Object: cfg.ObjectThreshold,
			Hand:   cfg.HandThreshold,
			Face:   cfg.FaceThreshold,
		}),
		machine,
		mapper,
		sequencer,
		flag,
		metrics.New(prometheus.DefaultRegisterer),
	)

	srv := server.New(server.Config{
		Flag:    flag,
		Store:   st,
		Mapper:  mapper,
		Machine: machine,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Control plane listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(cfg.Addr); err != nil {
			log.Printf("HTTP server stopped: %v", err)
			stop()
		}
	}()

	if cfg.Tray {
		t := tray.New(flag)
		t.OnQuit(stop)
		go refreshTrayState(ctx, t, machine)
		// systray needs the main goroutine; the loop moves aside.
		go func() {
			orch.Run(ctx)
			os.Exit(0)
		}()
		t.Run()
		return
	}

	orch.Run(ctx)
}

// refreshTrayState mirrors the trigger machine's state into the tray menu.
func refreshTrayState(ctx context.Context, t *tray.Tray, machine *trigger.Machine) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.SetState(machine.State().String())
		}
	}
}

// loadCalibration reads the persisted corner map, tolerating a store that
// has never been calibrated.
func loadCalibration(st *store.Store) *kinematics.CalibrationMap {
	calib, err := st.LoadCalibration()
	if err != nil {
		if errors.Is(err, store.ErrNoCalibration) {
			log.Println("No calibration stored; aiming falls back to rest angles until calibrated")
		} else {
			log.Printf("Failed to load calibration (%v); aiming falls back to rest angles", err)
		}
		return nil
	}
	if err := calib.Validate(); err != nil {
		log.Printf("Stored calibration rejected (%v); aiming falls back to rest angles", err)
	}
	return calib
}

// newDetector builds the DNN detector when a model is configured, and
// falls back to the mock detector otherwise.
func newDetector(cfg *config.Config) detector.Detector {
	if cfg.ModelPath == "" {
		log.Println("No detection model configured, using mock detector")
		return detector.NewMock()
	}

	detCfg := detector.DefaultConfig()
	detCfg.ModelPath = cfg.ModelPath
	detCfg.ConfigPath = cfg.ModelConfigPath
	detCfg.LabelsPath = cfg.LabelsPath
	if cfg.ObjectLabel != "" {
		detCfg.ClassNames[vision.ClassObject] = cfg.ObjectLabel
	}

	d, err := detector.NewDNNDetector(capture.NewCamera(cfg.CameraID), detCfg)
	if err != nil {
		log.Printf("DNN detector unavailable (%v), using mock detector", err)
		return detector.NewMock()
	}
	log.Println("Using DNN detection")
	return d
}
