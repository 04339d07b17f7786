package gotftpd

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"
	"go.universe.tf/netboot/tftp"

	"github.com/hollis-cloud/pyxis/metrics"
	"github.com/hollis-cloud/pyxis/tftpd"
)

// Netboot serves iPXE loader binaries to PXE firmware over TFTP.
type Netboot struct {
	fs     http.FileSystem
	addr   string
	logger *zap.Logger
}

// New is
func New(fs http.FileSystem, addr string, logger *zap.Logger) (tftpd.TFTPd, error) {
	return &Netboot{
		fs:     fs,
		addr:   addr,
		logger: logger,
	}, nil
}

// Serve is
func (n *Netboot) Serve(ctx context.Context) error {
	l, err := net.ListenPacket("udp4", n.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", n.addr, err)
	}
	defer l.Close()

	go func() {
		<-ctx.Done()
		l.Close()
	}()

	server := &tftp.Server{
		Handler: n.handler,
		InfoLog: func(msg string) {
			n.logger.Info("info log", zap.String("msg", msg))
		},
		TransferLog: func(clientAddr net.Addr, path string, err error) {
			if err != nil {
				metrics.TFTPErrors.Inc()
				n.logger.Error("transfer", zap.String("path", path), zap.String("client", clientAddr.String()), zap.Error(err))
			} else {
				metrics.TFTPTransfers.Inc()
				n.logger.Info("transfer", zap.String("path", path), zap.String("client", clientAddr.String()))
			}
		},
	}

	err = server.Serve(l)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (n *Netboot) handler(path string, clientAddr net.Addr) (io.ReadCloser, int64, error) {
	f, err := n.fs.Open(filepath.Join("/", path))
	if err != nil {
		return nil, -1, fmt.Errorf("failed to open path %s: %w", path, err)
	}
	s, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, -1, fmt.Errorf("failed to get %s stat: %w", path, err)
	}
	if s.IsDir() {
		f.Close()
		return nil, -1, fmt.Errorf("path %s is a directory", path)
	}
	return f, s.Size(), nil
}

var _ tftpd.TFTPd = &Netboot{}
