package monitoring

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeSource struct {
	cycle      uint64
	iterations uint64
	totalInsns uint64
}

func (s fakeSource) Cycle() uint64      { return s.cycle }
func (s fakeSource) Iterations() uint64 { return s.iterations }
func (s fakeSource) TotalInsns() uint64 { return s.totalInsns }

type fakeMachine struct {
	numCores int
}

func (m fakeMachine) NumCores() int { return m.numCores }

func (m fakeMachine) DumpState(w io.Writer) {
	_, _ = w.Write([]byte("Core 0 (core0):\n"))
}

var _ = Describe("Monitor", func() {
	var m *Monitor

	BeforeEach(func() {
		m = NewMonitor()
	})

	It("should serve scheduler counters", func() {
		m.RegisterScheduler(fakeSource{cycle: 42, iterations: 42, totalInsns: 84})
		m.RegisterMachine(fakeMachine{numCores: 2})

		rec := httptest.NewRecorder()
		m.status(rec, nil)

		rsp := statusRsp{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Cycle).To(Equal(uint64(42)))
		Expect(rsp.TotalInsns).To(Equal(uint64(84)))
		Expect(rsp.NumCores).To(Equal(2))
	})

	It("should serve zeroes before anything is registered", func() {
		rec := httptest.NewRecorder()
		m.status(rec, nil)

		rsp := statusRsp{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Cycle).To(Equal(uint64(0)))
		Expect(rsp.NumCores).To(Equal(0))
	})

	It("should serve the machine state dump", func() {
		m.RegisterMachine(fakeMachine{numCores: 1})

		rec := httptest.NewRecorder()
		m.machineState(rec, nil)

		Expect(rec.Body.String()).To(ContainSubstring("Core 0"))
	})

	It("should 404 the state dump without a machine", func() {
		rec := httptest.NewRecorder()
		m.machineState(rec, nil)

		Expect(rec.Code).To(Equal(404))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("warmup", 100)
		bar.IncrementInProgress(10)
		bar.MoveInProgressToFinished(10)

		Expect(bar.ID).ToNot(BeEmpty())
		Expect(bar.Finished).To(Equal(uint64(10)))
		Expect(bar.InProgress).To(Equal(uint64(0)))
		Expect(bar.Fraction()).To(BeNumerically("~", 0.1))

		rec := httptest.NewRecorder()
		m.listProgressBars(rec, nil)
		Expect(bytes.Contains(rec.Body.Bytes(), []byte("warmup"))).
			To(BeTrue())

		m.CompleteProgressBar(bar)
		Expect(m.progressBars).To(BeEmpty())
	})
})
