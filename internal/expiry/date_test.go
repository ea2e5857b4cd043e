package expiry

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Date", func() {
	Describe("NewDate", func() {
		It("rejects days that would roll over", func() {
			_, ok := NewDate(2026, time.April, 31)
			Expect(ok).To(BeFalse())
		})

		It("rejects months outside the calendar", func() {
			_, ok := NewDate(2026, 13, 1)
			Expect(ok).To(BeFalse())
		})

		It("accepts real days", func() {
			d, ok := NewDate(2026, time.April, 30)
			Expect(ok).To(BeTrue())
			Expect(d.String()).To(Equal("2026-04-30"))
		})
	})

	Describe("AddMonths", func() {
		DescribeTable("calendar arithmetic",
			func(start string, months int, expected string) {
				Expect(mustDate(start).AddMonths(months).String()).To(Equal(expected))
			},
			Entry("plain", "2025-01-15", 3, "2025-04-15"),
			Entry("across a year", "2025-11-30", 2, "2026-01-30"),
			Entry("clamped to February", "2025-01-31", 1, "2025-02-28"),
			Entry("clamped to a leap February", "2024-01-31", 1, "2024-02-29"),
			Entry("backwards", "2025-03-31", -1, "2025-02-28"),
			Entry("backwards across years", "2025-01-15", -13, "2023-12-15"),
			Entry("zero", "2025-06-10", 0, "2025-06-10"),
		)
	})

	Describe("Compare", func() {
		It("orders by year, month, then day", func() {
			Expect(mustDate("2025-01-31").Before(mustDate("2025-02-01"))).To(BeTrue())
			Expect(mustDate("2026-01-01").After(mustDate("2025-12-31"))).To(BeTrue())
			Expect(mustDate("2025-05-05").Compare(mustDate("2025-05-05"))).To(Equal(0))
		})
	})

	Describe("JSON", func() {
		type payload struct {
			Date Date `json:"date"`
		}

		It("encodes as ISO", func() {
			out, err := json.Marshal(payload{Date: mustDate("2026-04-30")})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(out)).To(Equal(`{"date":"2026-04-30"}`))
		})

		It("encodes the zero date as null", func() {
			out, err := json.Marshal(payload{})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(out)).To(Equal(`{"date":null}`))
		})

		It("decodes ISO and null", func() {
			var p payload
			Expect(json.Unmarshal([]byte(`{"date":"2027-12-31"}`), &p)).To(Succeed())
			Expect(p.Date).To(Equal(Date{Year: 2027, Month: time.December, Day: 31}))

			Expect(json.Unmarshal([]byte(`{"date":null}`), &p)).To(Succeed())
			Expect(p.Date.IsZero()).To(BeTrue())
		})

		It("rejects non-ISO strings", func() {
			var p payload
			Expect(json.Unmarshal([]byte(`{"date":"04/2026"}`), &p)).NotTo(Succeed())
		})
	})
})
