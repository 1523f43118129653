package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tgisim/internal/dosing"
	"github.com/san-kum/tgisim/internal/integrators"
	"github.com/san-kum/tgisim/internal/pkpd"
	"github.com/san-kum/tgisim/internal/sim"
)

func run(p pkpd.Params, schedule *dosing.Schedule, cfg sim.Config) *sim.Result {
	model, err := pkpd.NewTGI(p)
	Expect(err).NotTo(HaveOccurred())

	result, err := sim.New(model, schedule, integrators.NewRK45()).Run(context.Background(), cfg)
	Expect(err).NotTo(HaveOccurred())
	return result
}

var _ = Describe("dosed TGI simulation", func() {
	var cfg sim.Config

	BeforeEach(func() {
		cfg = sim.DefaultConfig()
	})

	Context("reference regimen: 20 mg every 2 days for 252 days", func() {
		var (
			result    *sim.Result
			untreated float64
		)

		BeforeEach(func() {
			schedule, err := dosing.NewFixedInterval(20, 2, 252)
			Expect(err).NotTo(HaveOccurred())
			result = run(pkpd.DefaultParams(), schedule, cfg)
			untreated = cfg.InitialDiameter * math.Exp(pkpd.DefaultGrowthRate*cfg.Duration)
		})

		It("samples every step across the whole horizon", func() {
			Expect(result.Len()).To(Equal(3651))
			Expect(result.Final().Time).To(BeNumerically("~", 365, 1e-9))
		})

		It("administers every scheduled dose exactly once", func() {
			Expect(result.Doses()).To(HaveLen(127))
		})

		It("ends smaller than the untreated tumor", func() {
			Expect(result.Final().Diameter).To(BeNumerically("<", untreated))
		})

		It("washes the drug out after the last dose", func() {
			Expect(result.Final().Exposure).To(BeNumerically("<", 1e-3))
		})

		It("stops the resistance clock once treatment ends", func() {
			Expect(result.Final().Clock).To(BeNumerically("~", 252.1, 1e-6))
		})
	})

	Context("aggressive kill rate", func() {
		It("shrinks the tumor below its initial diameter", func() {
			p := pkpd.DefaultParams()
			p.KillRate = 1.0
			schedule, err := dosing.NewFixedInterval(20, 2, 252)
			Expect(err).NotTo(HaveOccurred())

			result := run(p, schedule, cfg)
			Expect(result.Final().Diameter).To(BeNumerically("<", cfg.InitialDiameter))
			Expect(result.Final().Exposure).To(BeNumerically("<", 1e-3))
		})
	})

	Context("without drug effect", func() {
		It("grows exponentially at the growth rate", func() {
			p := pkpd.DefaultParams()
			p.KillRate = 0
			schedule, err := dosing.NewFixedInterval(20, 2, 252)
			Expect(err).NotTo(HaveOccurred())

			result := run(p, schedule, cfg)
			diameters, times := result.Diameters(), result.Times()
			for i := 1; i < len(diameters); i++ {
				Expect(diameters[i]).To(BeNumerically(">", diameters[i-1]))
			}
			for i := range diameters {
				want := cfg.InitialDiameter * math.Exp(p.GrowthRate*times[i])
				Expect(diameters[i]).To(BeNumerically("~", want, want*1e-6))
			}
		})
	})

	Context("4 weeks on / 2 weeks off for 84 days", func() {
		var result *sim.Result

		BeforeEach(func() {
			schedule, err := dosing.NewCyclic(100, 28, 14, 84)
			Expect(err).NotTo(HaveOccurred())
			result = run(pkpd.DefaultParams(), schedule, cfg)
		})

		It("gives 56 daily doses outside the OFF gaps", func() {
			doses := result.Doses()
			Expect(doses).To(HaveLen(56))
			for _, d := range doses {
				inGap := (d.Scheduled >= 28 && d.Scheduled < 42) || (d.Scheduled >= 70 && d.Scheduled < 84)
				Expect(inGap).To(BeFalse(), "dose at %g", d.Scheduled)
			}
		})

		It("keeps integrating with no boluses once the schedule is exhausted", func() {
			Expect(result.Len()).To(Equal(3651))
			last := result.Doses()[55]
			Expect(last.Scheduled).To(Equal(69.0))
		})

		It("advances the clock only inside the active windows", func() {
			for _, s := range result.Samples() {
				if s.Time > 70.6 {
					Expect(s.Active).To(BeFalse())
				}
			}
			// Windows starting in [0, 27.5] and [41.5, 69.5].
			Expect(result.Final().Clock).To(BeNumerically("~", 55.7, 0.25))
		})
	})

	Context("untreated control arm", func() {
		It("never doses and never activates", func() {
			result := run(pkpd.DefaultParams(), dosing.NewNone(), cfg)
			Expect(result.Doses()).To(BeEmpty())
			Expect(result.Final().Clock).To(BeZero())
			Expect(result.Final().Exposure).To(BeZero())
		})
	})
})
