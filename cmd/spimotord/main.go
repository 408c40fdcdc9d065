package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"regexp"
	"runtime"

	spimotor "github.com/brianrwillis/SPIMotorController"
	"github.com/brianrwillis/SPIMotorController/cmd/spimotord/panel"
	"github.com/brianrwillis/SPIMotorController/lcd"
	"github.com/brianrwillis/SPIMotorController/mc33879"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mdouchement/logger"
	"github.com/spf13/cobra"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cpath string
	dummy bool
)

func main() {
	cmd := &cobra.Command{
		Use:     "spimotord",
		Short:   "Operator panel for an MC33879 motor switch bank",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    cobra.NoArgs,
		RunE:    daemon,
	}
	cmd.Flags().StringVarP(&cpath, "config", "c", "/etc/spimotord/spimotord.yml", "Configfile path")
	cmd.Flags().BoolVarP(&dummy, "dummy", "", false, "Start spimotord with a dummy switch bank")
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Version for spimotord",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(cmd.Version)
		},
	})

	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func daemon(_ *cobra.Command, args []string) error {
	cfg, err := spimotor.Load(cpath)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	// Stdout belongs to the panel, logs go to stderr for journalctl.
	h := logger.NewSlogTextHandler(os.Stderr, &logger.SlogTextOption{
		Level:            level,
		ForceColors:      true,
		ForceFormatting:  true,
		PrefixRE:         regexp.MustCompile(`^(\[.*?\])\s`),
		DisableTimestamp: true,
	})
	log := logger.WrapSlogHandler(h)
	ctx := logger.WithLogger(context.Background(), log)

	log.Infof("spimotord version %s", version)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var bank spimotor.SwitchBank = spimotor.NewDummySwitchBank()
	if !dummy {
		var ctrl *mc33879.Controller
		if cfg.Port != "" {
			ctrl, err = mc33879.Open(cfg.Port, cfg.ReadTimeout.Duration)
		} else {
			ctrl, err = mc33879.OpenAuto(cfg.ReadTimeout.Duration)
		}
		if err != nil {
			return fmt.Errorf("mc33879: %w", err)
		}
		if cfg.Debug {
			ctrl.SetLogger(log)
		}

		log.Infof("Switch bank bridge port `%s`", ctrl.Port())

		id, err := ctrl.Identify()
		if err != nil {
			return fmt.Errorf("mc33879: %w", err)
		}
		log.Infof("Bridge - REV: %s - FW: %s", id.Revision, id.Firmware)

		defer ctrl.Close()
		ctrl.Start(ctx)
		bank = ctrl
	}

	// The timer hardware behind the duty register is not driven from here;
	// the programmer records and logs what it would push.
	prog := spimotor.NewDummyDutyProgrammer()
	prog.SetLogger(log)

	pwm := spimotor.NewPWM(prog)
	go pwm.Run(ctx)

	hub, err := spimotor.NewHub(cfg)
	if err != nil {
		return err
	}
	hub.Launch(ctx)

	screen := lcd.New()
	ui := spimotor.NewUI(bank, pwm, screen)
	ui.SetHub(hub)
	ui.SetLabels(cfg.Labels())
	go ui.Run(ctx)

	keys := make(chan spimotor.Key, 8)
	go ui.ForwardKeys(ctx, keys)
	go ui.ForwardFaults(ctx)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	tui := tea.NewProgram(panel.New(screen, keys), tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		tui.Quit()
	}()

	if _, err := tui.Run(); err != nil {
		return err
	}
	cancel()

	log.Info("Gracefully shutdown")
	return nil
}
