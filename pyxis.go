package pyxis

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hollis-cloud/pyxis/assets"
	"github.com/hollis-cloud/pyxis/config"
	"github.com/hollis-cloud/pyxis/datastore/sqlite"
	"github.com/hollis-cloud/pyxis/dhcpd/godhcpd"
	"github.com/hollis-cloud/pyxis/httpd/gohttpd"
	"github.com/hollis-cloud/pyxis/netif"
	"github.com/hollis-cloud/pyxis/tftpd/gotftpd"
	"github.com/hollis-cloud/pyxis/types"
)

// restartDelay is how long a crashed daemon stays down before its next
// attempt.
const restartDelay = 5 * time.Second

// linkTimeout bounds the wait for carrier on the boot interface.
const linkTimeout = 10 * time.Second

// Run the pyxis
func Run(ctx context.Context) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}

	var (
		configPath string
		iface      string
		dsn        string
		checkOnly  bool
		syncAssets bool
	)
	flags := flag.NewFlagSet(fmt.Sprintf("pyxis (v%s rev:%s)", version, revision), flag.ContinueOnError)
	flags.StringVar(&configPath, "config", "pyxis.yaml", "configuration file path")
	flags.StringVar(&iface, "iface", "", "boot interface (overrides the configuration)")
	flags.StringVar(&dsn, "dsn", "file:pyxis.db?cache=shared", "sqlite3 dsn")
	flags.BoolVar(&checkOnly, "check", false, "validate the configuration and exit")
	flags.BoolVar(&syncAssets, "sync", false, "download missing boot assets before serving")
	flags.Parse(os.Args[1:])

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", configPath, err)
	}
	if iface != "" {
		cfg.Interface = iface
	}
	if cfg.Interface == "" {
		cfg.Interface = "eth0"
	}

	var ip net.IP
	if cfg.Address != "" {
		ip = net.ParseIP(cfg.Address)
		if ip == nil || ip.To4() == nil {
			return fmt.Errorf("failed to parse address %s", cfg.Address)
		}
	} else {
		ip, _, err = netif.InterfaceAddress(cfg.Interface)
		if err != nil {
			return err
		}
	}
	cfg.SetDefaults(ip)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if syncAssets {
		syncer := assets.NewSyncer(cfg.HTTPRoot, logger)
		if err := syncer.Sync(ctx, cfg.Sources); err != nil {
			return err
		}
	}

	problems := assets.Verify(&cfg.Menu, cfg.HTTPRoot)
	for _, problem := range problems {
		logger.Warn("menu references a file the HTTP root cannot serve", zap.String("problem", problem.String()))
	}
	if len(problems) > 0 && (checkOnly || cfg.Strict) {
		return fmt.Errorf("%d menu references cannot be served from %s", len(problems), cfg.HTTPRoot)
	}
	if checkOnly {
		logger.Info("configuration ok",
			zap.String("config", configPath),
			zap.Int("entries", len(cfg.Menu.Entries)),
			zap.Int("files", len(cfg.Menu.Files())),
		)
		return nil
	}

	ds, err := sqlite.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer ds.Close()

	if err := netif.EnsureUp(cfg.Interface, linkTimeout, logger); err != nil {
		logger.Warn("boot interface is not ready", zap.Error(err))
	}

	eg, ctx := errgroup.WithContext(ctx)

	dhcpd, err := godhcpd.New(cfg.Responders, cfg.Interface, cfg.DHCPPort, types.IP(ip), ds, logger)
	if err != nil {
		return err
	}
	eg.Go(func() error {
		logger.Info("starting dhcpd", zap.String("addr", fmt.Sprintf("%s:%d", ip, cfg.DHCPPort)))
		return supervise(ctx, "dhcpd", logger, dhcpd.Serve)
	})

	tftpd, err := gotftpd.New(http.Dir(cfg.TFTPRoot), fmt.Sprintf("%s:%d", ip, cfg.TFTPPort), logger)
	if err != nil {
		return err
	}
	eg.Go(func() error {
		logger.Info("starting tftpd", zap.String("addr", fmt.Sprintf("%s:%d", ip, cfg.TFTPPort)))
		return supervise(ctx, "tftpd", logger, tftpd.Serve)
	})

	httpd, err := gohttpd.New(fmt.Sprintf("%s:%d", ip, cfg.HTTPPort), &cfg.Menu, cfg.BaseURL, http.Dir(cfg.HTTPRoot), ds, logger)
	if err != nil {
		return err
	}
	eg.Go(func() error {
		logger.Info("starting httpd", zap.String("addr", fmt.Sprintf("%s:%d", ip, cfg.HTTPPort)))
		return httpd.Serve(ctx)
	})

	return eg.Wait()
}

// supervise restarts a crashed daemon until the context ends.
func supervise(ctx context.Context, name string, logger *zap.Logger, serve func(context.Context) error) error {
	for {
		err := serve(ctx)
		if ctx.Err() != nil {
			return err
		}
		logger.Error("daemon exited, restarting",
			zap.String("daemon", name),
			zap.Duration("delay", restartDelay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(restartDelay):
		}
	}
}
