package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DHCPRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "total_pxe_requests",
		Help: "total number of PXE boot requests seen by pyxis",
	})
)

var (
	DHCPResponses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "total_pxe_responses",
		Help: "total number of proxy DHCP responses sent by pyxis",
	})
)

var (
	TFTPTransfers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "total_tftp_transfers",
		Help: "total number of files served over TFTP",
	})
)

var (
	TFTPErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "total_tftp_errors",
		Help: "total number of failed TFTP transfers",
	})
)

var (
	BootScripts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "total_boot_scripts",
		Help: "total number of boot scripts served over HTTP",
	})
)

var (
	BootReports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "total_boot_reports",
		Help: "total number of boot reports recorded",
	})
)

var (
	AssetDownloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "total_asset_downloads",
		Help: "total number of boot assets downloaded by sync",
	})
)
