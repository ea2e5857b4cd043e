package expiry

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Extract", func() {
	var (
		text   string
		result Extraction
	)

	JustBeforeEach(func() {
		result = Extract(text)
	})

	When("a labeled lot and a labeled month/year are present", func() {
		BeforeEach(func() {
			text = "LOTE: AB123456 EXP 04/2026"
		})

		It("captures the code without its label", func() {
			Expect(result.ProductCode).To(Equal("AB123456"))
			Expect(result.CodeKind).To(Equal(CodePrefixed))
		})

		It("resolves the date to the end of the month", func() {
			Expect(result.Date.String()).To(Equal("2026-04-30"))
			Expect(result.DateKind).To(Equal(DateLabeledPartial))
		})

		It("keeps the raw date fragment", func() {
			Expect(result.DateText).To(Equal("04/2026"))
		})
	})

	When("only a Spanish month and year are present", func() {
		BeforeEach(func() {
			text = "ABR2026"
		})

		It("reads the month name", func() {
			Expect(result.Date.String()).To(Equal("2026-04-30"))
			Expect(result.DateKind).To(Equal(DateMonthName))
			Expect(result.DateText).To(Equal("ABR2026"))
		})
	})

	When("the month name is spelled out with a period", func() {
		BeforeEach(func() {
			text = "CAD. Sept. 27"
		})

		It("reads the abbreviation prefix", func() {
			Expect(result.Date.String()).To(Equal("2027-09-30"))
			Expect(result.DateKind).To(Equal(DateMonthName))
			Expect(result.DateText).To(Equal("Sept. 27"))
		})
	})

	When("month and year follow a long digit run", func() {
		BeforeEach(func() {
			text = "2123764 12 27"
		})

		It("reads them as month and two-digit year", func() {
			Expect(result.Date.String()).To(Equal("2027-12-31"))
			Expect(result.DateKind).To(Equal(DateNumericRun))
			Expect(result.DateText).To(Equal("12 27"))
		})

		It("takes the digit run as the code", func() {
			Expect(result.ProductCode).To(Equal("2123764"))
			Expect(result.CodeKind).To(Equal(CodeToken))
		})
	})

	When("the label and the date are on different lines", func() {
		BeforeEach(func() {
			text = "VENCE:\n15/08/2027"
		})

		It("matches across the line break", func() {
			Expect(result.Date.String()).To(Equal("2027-08-15"))
			Expect(result.DateKind).To(Equal(DateLabeledFull))
		})

		It("finds no code", func() {
			Expect(result.ProductCode).To(BeEmpty())
			Expect(result.CodeKind).To(Equal(CodeNone))
		})
	})

	When("a higher priority match does not form a valid date", func() {
		BeforeEach(func() {
			text = "13/27 ABC 05/2026"
		})

		It("falls through to the next rule", func() {
			Expect(result.Date.String()).To(Equal("2026-05-31"))
			Expect(result.DateKind).To(Equal(DateMonthYear))
		})
	})

	When("the date is in ISO form", func() {
		BeforeEach(func() {
			text = "Fab 2026-04-15"
		})

		It("reaches the ISO rule", func() {
			Expect(result.Date.String()).To(Equal("2026-04-15"))
			Expect(result.DateKind).To(Equal(DateISO))
		})
	})

	When("a line carries both a bare token and a labeled code", func() {
		BeforeEach(func() {
			text = "SERIAL123 LOT 4455"
		})

		It("prefers the labeled code", func() {
			Expect(result.ProductCode).To(Equal("4455"))
			Expect(result.CodeKind).To(Equal(CodePrefixed))
		})
	})

	When("the lot label is glued to the date before it", func() {
		BeforeEach(func() {
			text = "VTO:04/2026LOTE:AB1234"
		})

		It("still reads the labeled code", func() {
			Expect(result.ProductCode).To(Equal("AB1234"))
			Expect(result.CodeKind).To(Equal(CodePrefixed))
		})

		It("reads the date in front of the label", func() {
			Expect(result.Date.String()).To(Equal("2026-04-30"))
			Expect(result.DateKind).To(Equal(DateLabeledPartial))
		})
	})

	When("an ISO date has a year that looks like a day", func() {
		BeforeEach(func() {
			text = "2012-04-26"
		})

		It("is not split into a labeled date", func() {
			Expect(result.Date.String()).To(Equal("2012-04-26"))
			Expect(result.DateKind).To(Equal(DateISO))
			Expect(result.DateText).To(Equal("2012-04-26"))
		})
	})

	When("codes appear on several lines", func() {
		BeforeEach(func() {
			text = "ab\n\nREF: 12-AB34\nXYZ12345"
		})

		It("stops at the first line with a code", func() {
			Expect(result.ProductCode).To(Equal("12-AB34"))
		})
	})

	When("the only candidate is a bare token", func() {
		BeforeEach(func() {
			text = "  xyz999  "
		})

		It("keeps the token as written", func() {
			Expect(result.ProductCode).To(Equal("xyz999"))
			Expect(result.CodeKind).To(Equal(CodeToken))
		})
	})

	When("nothing matches", func() {
		BeforeEach(func() {
			text = "Tab 500 mg\nx 20"
		})

		It("reports nothing found", func() {
			Expect(result.Found()).To(BeFalse())
			Expect(result.Date.IsZero()).To(BeTrue())
			Expect(result.DateKind).To(Equal(DateNone))
		})
	})

	It("is deterministic", func() {
		input := "LOT A1B2C3D4\nV 03/28"
		Expect(Extract(input)).To(Equal(Extract(input)))
	})
})

var _ = DescribeTable("Extract with a label glued to the previous word",
	func(text, code string) {
		result := Extract(text)
		Expect(result.ProductCode).To(Equal(code))
		Expect(result.CodeKind).To(Equal(CodePrefixed))
	},
	Entry("after digits", "12LOTE AB1234", "AB1234"),
	Entry("after letters", "NROLOTE:AB1234", "AB1234"),
	Entry("short label", "XLOT.9988-A", "9988-A"),
	Entry("reference", "NºREF 556677", "556677"),
)
