// Command pibd is the thin entry point wiring a TOML config file to a
// running Pib instance: parse flags, load PibConfig, bring up logging,
// construct the Pib, and block until terminated.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"

	enc "github.com/named-data/go-pib/pkg/encoding"
	"github.com/named-data/go-pib/pkg/ndn"
	"github.com/named-data/go-pib/pkg/pib"
	"github.com/named-data/go-pib/pkg/pibconfig"
)

func main() {
	configPath := flag.String("config", "pib.conf.toml", "path to the PIB TOML configuration file")
	owner := flag.String("owner", "", "owner name this PIB instance serves")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	log.SetHandler(text.New(os.Stderr))
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if *owner == "" {
		log.Fatal("pibd: -owner is required")
	}

	cfg, err := pibconfig.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("pibd: loading configuration")
	}

	face := newLogFace()

	svc, err := pib.NewPib(face, cfg.PibDir(), "tpm-file:"+cfg.TpmDir(), *owner)
	if err != nil {
		log.WithError(err).Fatal("pibd: starting PIB service")
	}
	defer svc.Close()

	log.WithField("owner", *owner).WithField("pib-dir", cfg.PibDir()).
		Info("pibd running")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("pibd shutting down")
}

// logFace is a minimal ndn.Face that logs registrations instead of talking
// to a forwarder, letting pibd start and exercise Pib's lifecycle without a
// live NDN network stack wired in. A deployment with a real forwarder
// connection swaps this for one backed by an actual face/transport.
type logFace struct {
	handlers map[string]ndn.InterestHandler
}

func newLogFace() *logFace {
	return &logFace{handlers: make(map[string]ndn.InterestHandler)}
}

func (f *logFace) RegisterRoute(prefix enc.Name) error {
	log.WithField("prefix", prefix.String()).Info("logFace: route registered")
	return nil
}

func (f *logFace) UnregisterRoute(prefix enc.Name) error {
	log.WithField("prefix", prefix.String()).Info("logFace: route unregistered")
	return nil
}

func (f *logFace) AttachHandler(prefix enc.Name, handler ndn.InterestHandler) error {
	f.handlers[prefix.String()] = handler
	log.WithField("prefix", prefix.String()).Info("logFace: handler attached")
	return nil
}

func (f *logFace) DetachHandler(prefix enc.Name) error {
	delete(f.handlers, prefix.String())
	log.WithField("prefix", prefix.String()).Info("logFace: handler detached")
	return nil
}
