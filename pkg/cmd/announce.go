package cmd

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/peerswarm/beacon/pkg/session"
	"github.com/peerswarm/beacon/pkg/stats"
	"github.com/peerswarm/beacon/pkg/tracker"
)

type announceFlags struct {
	infoHash string
	ip       string
	port     int
	left     uint64
}

func NewAnnounceCommand(app *App) *cobra.Command {
	f := &announceFlags{}
	cmd := &cobra.Command{
		Use:   "announce --info-hash <hash> <tracker_url>",
		Short: "Announce to a tracker",
		Long:  "Join the swarm for the given info hash and keep announcing to the tracker until interrupted",
		Args:  cobra.ExactArgs(1),
		Run: app.NewCmdRun(func(ctx context.Context, appCtx AppContext, args []string) error {
			return runAnnounce(ctx, appCtx, args, f)
		}),
	}
	cmd.Flags().StringVar(&f.infoHash, "info-hash", "", "Torrent info hash as 40 hex characters")
	cmd.Flags().StringVar(&f.ip, "ip", "127.0.0.1", "IP address reported to the tracker")
	cmd.Flags().IntVarP(&f.port, "port", "p", 6881, "Port reported to the tracker")
	cmd.Flags().Uint64Var(&f.left, "left", 0, "Number of bytes left to download")
	cmd.MarkFlagRequired("info-hash")

	return cmd
}

func (f *announceFlags) validate() (hash [session.HashLength]byte, addr netip.AddrPort, errs error) {
	raw, err := hex.DecodeString(f.infoHash)
	if err != nil || len(raw) != session.HashLength {
		errs = multierr.Append(errs, errors.New("info-hash must be 40 hex characters"))
	} else {
		copy(hash[:], raw)
	}

	ip, err := netip.ParseAddr(f.ip)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("invalid ip: %w", err))
	}
	if f.port <= 0 || f.port > 65535 {
		errs = multierr.Append(errs, fmt.Errorf("port out of range: %d", f.port))
	}
	if errs == nil {
		addr = netip.AddrPortFrom(ip, uint16(f.port))
	}
	return hash, addr, errs
}

func runAnnounce(ctx context.Context, appCtx AppContext, args []string, f *announceFlags) error {
	hash, addr, err := f.validate()
	if err != nil {
		return err
	}

	sess := session.New(hash, args[0], addr, f.left)
	announcer, err := tracker.New(sess, http.DefaultClient, appCtx.log)
	if err != nil {
		return err
	}

	collector := stats.NewCollector(sess)
	announcer.Register(collector)
	announcer.Start()

	appCtx.log.Info("announcing",
		zap.String("url", announcer.Url()),
		zap.String("info_hash", f.infoHash),
		zap.String("addr", addr.String()))

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			announcer.Stop()
			announcer.Wait()
			appCtx.printer.Infof("%s\n", collector.Summary())
			return nil
		case <-announcer.Done():
			appCtx.printer.Infof("%s\n", collector.Summary())
			return errors.New("announce loop terminated by tracker")
		case <-ticker.C:
			appCtx.printer.Infof("%s\n", collector.Summary())
		}
	}
}
