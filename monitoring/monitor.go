// Package monitoring turns a running simulation into a small web server so
// that the operator can watch progress and resource usage while a long run
// is in flight.
package monitoring

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
)

// A Source exposes the live counters of a scheduler. Implementations must
// be safe for concurrent reads.
type Source interface {
	Cycle() uint64
	Iterations() uint64
	TotalInsns() uint64
}

// A StateDumper writes a human-readable description of the machine state.
// DumpState reads live component state without stopping the run loop, so
// values in one dump can come from different cycles. /api/status is the
// consistent view; the dump is advisory.
type StateDumper interface {
	NumCores() int
	DumpState(w io.Writer)
}

// Monitor can turn a simulation into a server and allows external
// monitoring of the simulation.
type Monitor struct {
	source      Source
	machine     StateDumper
	portNumber  int
	openBrowser bool

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowserOnStart makes StartServer open the status page in a browser.
func (m *Monitor) WithBrowserOnStart() *Monitor {
	m.openBrowser = true
	return m
}

// RegisterScheduler registers the scheduler whose counters are served.
func (m *Monitor) RegisterScheduler(s Source) {
	m.source = s
}

// RegisterMachine registers the machine whose state is served.
func (m *Monitor) RegisterMachine(d StateDumper) {
	m.machine = d
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:    xid.New().String(),
		Name:  name,
		Total: total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars)-1)
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// StartServer starts the monitor as a web server with a custom port if
// wanted.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	r.HandleFunc("/api/status", m.status)
	r.HandleFunc("/api/machine", m.machineState)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.PathPrefix("/debug/").Handler(http.DefaultServeMux)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()

	if m.openBrowser {
		_ = browser.OpenURL(url + "/api/status")
	}
}

type statusRsp struct {
	Cycle      uint64 `json:"cycle"`
	Iterations uint64 `json:"iterations"`
	TotalInsns uint64 `json:"total_insns"`
	NumCores   int    `json:"num_cores"`
}

func (m *Monitor) status(w http.ResponseWriter, _ *http.Request) {
	rsp := statusRsp{}
	if m.source != nil {
		rsp.Cycle = m.source.Cycle()
		rsp.Iterations = m.source.Iterations()
		rsp.TotalInsns = m.source.TotalInsns()
	}
	if m.machine != nil {
		rsp.NumCores = m.machine.NumCores()
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

// machineState serves the advisory state dump. See StateDumper for its
// consistency contract.
func (m *Monitor) machineState(w http.ResponseWriter, _ *http.Request) {
	if m.machine == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("No machine registered"))
		dieOnErr(err)

		return
	}

	w.Header().Set("Content-Type", "text/plain")
	m.machine.DumpState(w)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bytes, err := json.Marshal(m.progressBars)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
