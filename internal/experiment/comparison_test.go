package experiment_test

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pgdyn/internal/dynamo"
	"github.com/san-kum/pgdyn/internal/experiment"
	"github.com/san-kum/pgdyn/internal/metrics"
	"github.com/san-kum/pgdyn/internal/models"
)

func testConfig() experiment.Config {
	cfg := experiment.DefaultConfig()
	cfg.Step = 1e-3
	cfg.Interval = 0.25
	cfg.MaxTime = 2
	return cfg
}

var _ = Describe("Registry", func() {
	It("lists the four variants in comparison order", func() {
		r := experiment.NewRegistry()
		Expect(r.Names()).To(Equal([]string{
			models.WithPGName, models.DirectName, models.TwoStrainWithPGName, models.TwoStrainDirectName,
		}))
	})

	It("rejects unknown variants", func() {
		_, err := experiment.NewRegistry().Variant("three_strain")
		Expect(err).To(HaveOccurred())

		_, err = experiment.NewRegistry().Entries("direct", "bogus")
		Expect(err).To(HaveOccurred())
	})

	It("attaches default initial states to entries", func() {
		entries, err := experiment.NewRegistry().Entries()
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(4))
		for _, e := range entries {
			Expect(e.InitialState).To(HaveLen(e.Variant.Dim))
		}
	})

	It("builds metrics per variant", func() {
		names := func(ms []dynamo.Metric) []string {
			out := make([]string, len(ms))
			for i, m := range ms {
				out[i] = m.Name()
			}
			return out
		}
		Expect(names(experiment.DefaultMetrics(models.WithPublicGood()))).To(Equal([]string{"peak_n", "final_pg", "zero_time_s"}))
		Expect(names(experiment.DefaultMetrics(models.TwoStrainDirect()))).To(Equal([]string{"peak_n1", "peak_n2", "zero_time_s"}))
	})
})

var _ = Describe("Comparison", func() {
	var entries []experiment.Entry

	BeforeEach(func() {
		var err error
		entries, err = experiment.NewRegistry().Entries()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("fails eagerly on a mismatched initial state", func() {
			entries[0].InitialState = dynamo.State{2, 1e4}
			_, err := experiment.NewComparison(testConfig(), entries)
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
			Expect(err.Error()).To(ContainSubstring(models.WithPGName))
		})

		It("rejects a non-positive interval or max time", func() {
			cfg := testConfig()
			cfg.Interval = 0
			_, err := experiment.NewComparison(cfg, entries)
			Expect(err).To(MatchError(dynamo.ErrInvalidDuration))

			cfg = testConfig()
			cfg.MaxTime = -1
			_, err = experiment.NewComparison(cfg, entries)
			Expect(err).To(MatchError(dynamo.ErrInvalidDuration))
		})

		It("rejects an unknown integration method", func() {
			cfg := testConfig()
			cfg.Method = "leapfrog"
			_, err := experiment.NewComparison(cfg, entries)
			Expect(err).To(MatchError(ContainSubstring("leapfrog")))
		})

		It("requires at least one variant", func() {
			_, err := experiment.NewComparison(testConfig(), nil)
			Expect(err).To(HaveOccurred())
		})

		It("names columns after variant labels", func() {
			c, err := experiment.NewComparison(testConfig(), entries)
			Expect(err).NotTo(HaveOccurred())
			cols := c.Columns()
			Expect(cols).To(HaveLen(3 + 2 + 4 + 3))
			Expect(cols[0]).To(Equal("with_pg.n"))
			Expect(cols[len(cols)-1]).To(Equal("two_strain_direct.s"))
		})
	})

	Describe("running", func() {
		It("emits one row per grid point with a shared time field", func() {
			c, err := experiment.NewComparison(testConfig(), entries)
			Expect(err).NotTo(HaveOccurred())

			var emitted []experiment.Row
			res, err := c.Run(context.Background(), func(r experiment.Row) error {
				emitted = append(emitted, r)
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Rows).To(HaveLen(8))
			Expect(emitted).To(HaveLen(8))
			Expect(c.Done()).To(BeTrue())

			for i, row := range res.Rows {
				Expect(row.Time).To(BeNumerically("~", 0.25*float64(i+1), 1e-12))
				Expect(row.States).To(HaveLen(4))
				for j, g := range row.GlobalTimes {
					Expect(g).To(Equal(row.Time), "variant %d at row %d", j, i)
				}
				Expect(strings.Fields(row.String())).To(HaveLen(1 + 3 + 2 + 4 + 3))
			}
		})

		It("keeps variants independent of each other", func() {
			all, err := experiment.NewComparison(testConfig(), entries)
			Expect(err).NotTo(HaveOccurred())
			alone, err := experiment.NewComparison(testConfig(), entries[1:2])
			Expect(err).NotTo(HaveOccurred())

			resAll, err := all.Run(context.Background(), nil)
			Expect(err).NotTo(HaveOccurred())
			resAlone, err := alone.Run(context.Background(), nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(resAll.Rows).To(HaveLen(len(resAlone.Rows)))
			for i := range resAll.Rows {
				Expect(resAll.Rows[i].States[1]).To(Equal(resAlone.Rows[i].States[0]))
			}
		})

		It("reduces to exponential growth without feedback", func() {
			cfg := testConfig()
			cfg.Params = dynamo.Params{}
			cfg.Step = 0.01
			cfg.Interval = 0.5
			cfg.MaxTime = 1
			c, err := experiment.NewComparison(cfg, []experiment.Entry{{Variant: models.Direct(), InitialState: dynamo.State{2, 1e4}}})
			Expect(err).NotTo(HaveOccurred())

			res, err := c.Run(context.Background(), nil)
			Expect(err).NotTo(HaveOccurred())
			last := res.Rows[len(res.Rows)-1].States[0]
			Expect(last[0]).To(BeNumerically(">", 2))
			Expect(last[0] + last[1]).To(BeNumerically("~", 2+1e4, 1e-8))
		})

		It("tracks RK4 closely with a fine Euler step", func() {
			cfg := testConfig()
			cfg.MaxTime = 1
			direct := []experiment.Entry{{Variant: models.Direct(), InitialState: dynamo.State{2, 1e4}}}

			rk4, err := experiment.NewComparison(cfg, direct)
			Expect(err).NotTo(HaveOccurred())
			cfg.Method = "euler"
			euler, err := experiment.NewComparison(cfg, direct)
			Expect(err).NotTo(HaveOccurred())

			a, err := rk4.Run(context.Background(), nil)
			Expect(err).NotTo(HaveOccurred())
			b, err := euler.Run(context.Background(), nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(b.Rows).To(HaveLen(len(a.Rows)))
			last := len(a.Rows) - 1
			Expect(b.Rows[last].States[0][0]).To(BeNumerically("~", a.Rows[last].States[0][0], 0.05))
		})

		It("stops at the first emit error", func() {
			c, err := experiment.NewComparison(testConfig(), entries)
			Expect(err).NotTo(HaveOccurred())
			boom := errors.New("closed pipe")

			res, err := c.Run(context.Background(), func(r experiment.Row) error { return boom })
			Expect(err).To(MatchError(boom))
			Expect(res.Rows).To(HaveLen(1))
		})

		It("honours context cancellation between grid points", func() {
			c, err := experiment.NewComparison(testConfig(), entries)
			Expect(err).NotTo(HaveOccurred())
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			res, err := c.Run(ctx, nil)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Rows).To(BeEmpty())
		})

		It("records substrate exhaustion in the metrics", func() {
			cfg := testConfig()
			cfg.MaxTime = 12
			cfg.Interval = 0.5
			c, err := experiment.NewComparison(cfg, entries)
			Expect(err).NotTo(HaveOccurred())

			res, err := c.Run(context.Background(), nil)
			Expect(err).NotTo(HaveOccurred())
			for _, name := range res.Names {
				Expect(res.Metrics[name]).To(HaveKey("zero_time_s"))
				Expect(res.Metrics[name]["zero_time_s"]).NotTo(Equal(metrics.Never), name)
			}
			Expect(res.Metrics[models.WithPGName]["final_pg"]).To(BeNumerically(">", 0))
		})
	})

	Describe("row formatting", func() {
		It("writes the time and fixed-width fields", func() {
			row := experiment.Row{Time: 0.1, States: []dynamo.State{{2, 1e4}, {0}}}
			Expect(row.String()).To(Equal("  0.10   2.000000e+00   1.000000e+04   0.000000e+00"))
		})
	})

	Describe("exhaustion", func() {
		It("runs every variant to zero substrate", func() {
			cfg := testConfig()
			cfg.Step = 1e-2
			c, err := experiment.NewComparison(cfg, entries)
			Expect(err).NotTo(HaveOccurred())

			out, err := c.Exhaust(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(4))
			for i, ex := range out {
				Expect(ex.Err).NotTo(HaveOccurred())
				Expect(ex.State[entries[i].Variant.Substrate]).To(BeZero())
				Expect(ex.Time).To(BeNumerically(">", 0))
				Expect(ex.Steps).To(BeNumerically(">", 0))
			}
		})

		It("reports a step ceiling per variant", func() {
			cfg := testConfig()
			cfg.MaxSteps = 10
			stuck := []experiment.Entry{{Variant: models.Direct(), InitialState: dynamo.State{0, 5}}}
			c, err := experiment.NewComparison(cfg, stuck)
			Expect(err).NotTo(HaveOccurred())

			out, err := c.Exhaust(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(out[0].Err).To(MatchError(dynamo.ErrNoZeroReached))
		})
	})
})
