package metrics_test

import (
	"errors"
	"strings"
	"time"

	. "github.com/dogmatiq/escf/internal/metrics"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var _ = Describe("type Metrics", func() {
	var (
		reg *prometheus.Registry
		m   *Metrics
	)

	BeforeEach(func() {
		reg = prometheus.NewRegistry()

		var err error
		m, err = New(reg)
		Expect(err).ShouldNot(HaveOccurred())
	})

	It("counts commands by result", func() {
		m.ObserveCommand("user", "CreateUser", ResultOK, 10*time.Millisecond)
		m.ObserveCommand("user", "CreateUser", ResultRejected, 10*time.Millisecond)
		m.ObserveCommand("user", "CreateUser", ResultOK, 10*time.Millisecond)

		err := testutil.GatherAndCompare(
			reg,
			strings.NewReader(`
# HELP escf_commands_total Total number of commands executed, by aggregate, command type and result.
# TYPE escf_commands_total counter
escf_commands_total{aggregate="user",command="CreateUser",result="ok"} 2
escf_commands_total{aggregate="user",command="CreateUser",result="rejected"} 1
`),
			"escf_commands_total",
		)
		Expect(err).ShouldNot(HaveOccurred())

		Expect(testutil.CollectAndCount(m.CommandDuration)).To(Equal(1))
	})

	It("counts events by type", func() {
		m.ObserveEvent("user", "UserCreated")
		m.ObserveEvent("user", "UserCreated")

		Expect(testutil.ToFloat64(m.Events.WithLabelValues("user", "UserCreated"))).To(Equal(2.0))
	})

	It("counts deliveries by result", func() {
		m.ObserveDelivery("users", nil)
		m.ObserveDelivery("users", errors.New("<error>"))

		Expect(testutil.ToFloat64(m.Deliveries.WithLabelValues("users", ResultOK))).To(Equal(1.0))
		Expect(testutil.ToFloat64(m.Deliveries.WithLabelValues("users", ResultError))).To(Equal(1.0))
	})

	It("returns an error if the collectors are already registered", func() {
		_, err := New(reg)
		Expect(err).Should(HaveOccurred())
	})

	It("does not require a registerer", func() {
		m, err := New(nil)
		Expect(err).ShouldNot(HaveOccurred())

		m.ObserveEvent("user", "UserCreated")
		Expect(testutil.ToFloat64(m.Events.WithLabelValues("user", "UserCreated"))).To(Equal(1.0))
	})
})
