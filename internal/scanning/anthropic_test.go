package scanning

import (
	"context"
	"errors"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeMessager struct {
	params   anthropic.MessageNewParams
	response *anthropic.Message
	err      error
}

func (f *fakeMessager) New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error) {
	f.params = params
	return f.response, f.err
}

var _ = Describe("Anthropic", func() {
	var (
		messages *fakeMessager
		detector *Anthropic
		text     string
		err      error
	)

	BeforeEach(func() {
		messages = &fakeMessager{}
		detector = &Anthropic{messages: messages, model: "claude-test", timeout: time.Second}
	})

	JustBeforeEach(func() {
		text, err = detector.DetectText(context.Background(), encodedPNG(), "image/png")
	})

	When("the model transcribes the image", func() {
		BeforeEach(func() {
			messages.response = &anthropic.Message{
				Content: []anthropic.ContentBlockUnion{
					{Type: "text", Text: `{"text": "COD 12345678\nCAD 12/2027"}`},
				},
			}
		})

		It("returns the text", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("COD 12345678\nCAD 12/2027"))
		})

		It("sends the configured model", func() {
			Expect(string(messages.params.Model)).To(Equal("claude-test"))
			Expect(messages.params.Messages).To(HaveLen(1))
		})
	})

	When("the API fails", func() {
		BeforeEach(func() {
			messages.err = errors.New("overloaded")
		})

		It("wraps the error", func() {
			Expect(err).To(MatchError(ContainSubstring("overloaded")))
		})
	})

	When("the reply holds no text", func() {
		BeforeEach(func() {
			messages.response = &anthropic.Message{Content: []anthropic.ContentBlockUnion{}}
		})

		It("returns a parse error", func() {
			Expect(err).To(MatchError(ContainSubstring("parsing anthropic transcript")))
		})
	})
})

var _ = Describe("NewAnthropic", func() {
	It("requires a key", func() {
		_, err := NewAnthropic("", "")
		Expect(err).To(HaveOccurred())
	})
})
