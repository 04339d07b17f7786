package tftpd

import "context"

// TFTPd is the interface for pyxis to provide the TFTP daemon.
type TFTPd interface {
	Serve(ctx context.Context) error
}
