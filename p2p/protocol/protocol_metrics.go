package protocol

import (
	"github.com/hacash/node/metrics_config"
)

// connMetrics tracks the peer connections being served.
var connMetrics = metrics_config.NewGaugeVec("P2PConns", "Peer connections served by this node")

func addStreams(delta float64) {
	if connMetrics != nil {
		connMetrics.WithLabelValues("serving").Add(delta)
	}
}
