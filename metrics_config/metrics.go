package metrics_config

import (
	"net/http"
	"os"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/hacash/node/log"
)

// enabled is checked by the constructors of the package level gauges. When it
// is false they return nil and every caller skips its updates.
var enabled = true

func EnableMetrics() {
	enabled = true
}

func MetricsEnabled() bool {
	return enabled
}

func NewGaugeVec(name string, help string) *prometheus.GaugeVec {
	if !enabled {
		return nil
	}
	gaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	}, []string{"label"})
	prometheus.MustRegister(gaugeVec)
	return gaugeVec
}

func NewCounterVec(name string, help string) *prometheus.CounterVec {
	if !enabled {
		return nil
	}
	counterVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: help,
	}, []string{"label"})
	prometheus.MustRegister(counterVec)
	return counterVec
}

// processGauges are refreshed from gopsutil on every scrape.
type processGauges struct {
	cpu     *prometheus.GaugeVec
	mem     *prometheus.GaugeVec
	disk    *prometheus.GaugeVec
	net     *prometheus.GaugeVec
	dataDir string
}

func newProcessGauges(dataDir string) *processGauges {
	mk := func(name, help, label string) *prometheus.GaugeVec {
		g := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, []string{label})
		prometheus.MustRegister(g)
		return g
	}
	return &processGauges{
		cpu:     mk("cpu_usage", "Process and system cpu usage in percent", "cpu_type"),
		mem:     mk("mem_usage", "Process memory in bytes", "mem_type"),
		disk:    mk("disk_usage", "Data dir disk usage", "usage_type"),
		net:     mk("net_usage", "Open connections of the process", "net_type"),
		dataDir: dataDir,
	}
}

// StartProcessMetrics serves the registered metrics and the process usage
// gauges on addr under /metrics. The disk gauges measure the volume of
// dataDir.
func StartProcessMetrics(addr string, dataDir string) {
	// Short circuit if the metrics system is disabled
	if !enabled {
		return
	}
	gauges := newProcessGauges(dataDir)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gauges.update()
			promhttp.Handler().ServeHTTP(w, r)
		}),
	))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Global.WithField("err", err).Error("Metrics server stopped")
		}
	}()
}

func (g *processGauges) update() {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Global.WithField("err", err).Error("Failed to get process")
		return
	}
	g.collectCPU(proc)
	g.collectMemory(proc)
	g.collectDisk()
	g.collectNetworking(proc)
}

func (g *processGauges) collectCPU(proc *process.Process) {
	if percent, err := proc.CPUPercent(); err == nil {
		g.cpu.WithLabelValues("Hacash").Set(percent)
	} else {
		log.Global.WithField("err", err).Debug("Failed to get process cpu percent")
	}
	if usage, err := cpu.Percent(0, false); err == nil && len(usage) > 0 {
		g.cpu.WithLabelValues("System").Set(usage[0])
	}
	g.cpu.WithLabelValues("Go_routines").Set(float64(runtime.NumGoroutine()))
}

func (g *processGauges) collectMemory(proc *process.Process) {
	memInfo, err := proc.MemoryInfo()
	if err != nil {
		log.Global.WithField("err", err).Debug("Failed to get memory info")
		return
	}
	g.mem.WithLabelValues("Used").Set(float64(memInfo.RSS))
	g.mem.WithLabelValues("Swap").Set(float64(memInfo.Swap))
}

func (g *processGauges) collectDisk() {
	if g.dataDir == "" {
		return
	}
	usage, err := disk.Usage(g.dataDir)
	if err != nil {
		log.Global.WithField("err", err).Debug("Failed to get disk usage")
		return
	}
	g.disk.WithLabelValues("Used").Set(float64(usage.Used))
	g.disk.WithLabelValues("Free").Set(float64(usage.Free))
}

func (g *processGauges) collectNetworking(proc *process.Process) {
	for _, kind := range []string{"tcp", "udp"} {
		conns, err := net.ConnectionsPid(kind, proc.Pid)
		if err != nil {
			log.Global.WithField("err", err).Debug("Failed to get connections")
			continue
		}
		g.net.WithLabelValues(kind).Set(float64(len(conns)))
	}
}
