package expiry

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Aggregate", func() {
	var (
		blocks []TextBlock
		result Result
	)

	JustBeforeEach(func() {
		result = Aggregate(blocks)
	})

	When("the batch is empty", func() {
		BeforeEach(func() {
			blocks = nil
		})

		It("is not successful", func() {
			Expect(result.Success).To(BeFalse())
			Expect(result.ProductCode).To(BeEmpty())
			Expect(result.ExpirationDate.IsZero()).To(BeTrue())
			Expect(result.RawText).To(BeEmpty())
		})

		It("reports no images", func() {
			Expect(result.Err()).To(MatchError(ErrNoImages))
		})
	})

	When("code and date come from different images", func() {
		BeforeEach(func() {
			blocks = []TextBlock{
				{Text: "01/2025"},
				{Text: "XYZ999"},
			}
		})

		It("keeps each field independently", func() {
			Expect(result.Success).To(BeTrue())
			Expect(result.ProductCode).To(Equal("XYZ999"))
			Expect(result.ExpirationDate.String()).To(Equal("2025-01-31"))
			Expect(result.Err()).NotTo(HaveOccurred())
		})

		It("joins the raw text of every image", func() {
			Expect(result.RawText).To(Equal("01/2025\n---\nXYZ999\n---\n"))
		})

		It("reports each block", func() {
			Expect(result.Blocks).To(HaveLen(2))
			Expect(result.Blocks[0].Extraction.Date.String()).To(Equal("2025-01-31"))
			Expect(result.Blocks[1].Extraction.ProductCode).To(Equal("XYZ999"))
		})
	})

	When("several images carry a code and a date", func() {
		BeforeEach(func() {
			blocks = []TextBlock{
				{Text: "LOTE: FIRST1 VTO 03/2026"},
				{Text: "LOTE: SECOND2 VTO 09/2027"},
			}
		})

		It("keeps the first of each", func() {
			Expect(result.ProductCode).To(Equal("FIRST1"))
			Expect(result.ExpirationDate.String()).To(Equal("2026-03-31"))
		})
	})

	When("detection failed for one image", func() {
		var detectErr error

		BeforeEach(func() {
			detectErr = errors.New("quota exceeded")
			blocks = []TextBlock{
				{Err: detectErr},
				{Text: "LOT 778899 EXP 02/2026"},
			}
		})

		It("skips it and uses the rest of the batch", func() {
			Expect(result.Success).To(BeTrue())
			Expect(result.ProductCode).To(Equal("778899"))
			Expect(result.ExpirationDate.String()).To(Equal("2026-02-28"))
		})

		It("records the failure in the block report", func() {
			Expect(result.Blocks[0].Err).To(MatchError(detectErr))
			Expect(result.Blocks[0].Extraction.Found()).To(BeFalse())
		})

		It("leaves the failed image out of the raw text", func() {
			Expect(result.RawText).To(Equal("LOT 778899 EXP 02/2026\n---\n"))
		})
	})

	When("a failed image still returned partial text", func() {
		BeforeEach(func() {
			blocks = []TextBlock{
				{Text: "LOTE ZZ9988 VTO 06/2029", Err: errors.New("truncated")},
			}
		})

		It("keeps the text for review", func() {
			Expect(result.RawText).To(Equal("LOTE ZZ9988 VTO 06/2029\n---\n"))
		})

		It("does not extract from it", func() {
			Expect(result.Success).To(BeFalse())
			Expect(result.Err()).To(MatchError(ErrNothingDetected))
		})
	})

	When("no image yields anything", func() {
		BeforeEach(func() {
			blocks = []TextBlock{{Text: "abc"}, {Text: ""}}
		})

		It("reports nothing detected", func() {
			Expect(result.Success).To(BeFalse())
			Expect(result.Err()).To(MatchError(ErrNothingDetected))
		})

		It("skips empty text in the raw output", func() {
			Expect(result.RawText).To(Equal("abc\n---\n"))
		})
	})
})
