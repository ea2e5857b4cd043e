package scanning

import (
	"context"
	"errors"
	"time"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"google.golang.org/genproto/googleapis/rpc/status"
)

var _ = Describe("Vision", func() {
	var (
		detector *Vision
		request  *visionpb.BatchAnnotateImagesRequest
		response *visionpb.BatchAnnotateImagesResponse
		callErr  error
		text     string
		err      error
	)

	BeforeEach(func() {
		request, response, callErr = nil, nil, nil
		detector = &Vision{
			annotate: func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
				request = req
				return response, callErr
			},
			timeout: time.Second,
		}
	})

	JustBeforeEach(func() {
		text, err = detector.DetectText(context.Background(), []byte("jpeg bytes"), "image/jpeg")
	})

	When("text is found", func() {
		BeforeEach(func() {
			response = &visionpb.BatchAnnotateImagesResponse{
				Responses: []*visionpb.AnnotateImageResponse{{
					TextAnnotations: []*visionpb.EntityAnnotation{
						{Description: "LOTE: AB123456\nEXP 04/2026\n"},
						{Description: "LOTE:"},
					},
				}},
			}
		})

		It("returns the full annotation", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("LOTE: AB123456\nEXP 04/2026"))
		})

		It("asks for text detection on the raw JPEG", func() {
			Expect(request.Requests).To(HaveLen(1))
			Expect(request.Requests[0].Image.Content).To(Equal([]byte("jpeg bytes")))
			Expect(request.Requests[0].Features[0].Type).To(Equal(visionpb.Feature_TEXT_DETECTION))
			Expect(request.Requests[0].ImageContext.LanguageHints).To(Equal([]string{"es", "en"}))
		})
	})

	When("there is no text", func() {
		BeforeEach(func() {
			response = &visionpb.BatchAnnotateImagesResponse{
				Responses: []*visionpb.AnnotateImageResponse{{}},
			}
		})

		It("returns an empty transcript", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(BeEmpty())
		})
	})

	When("the image is rejected", func() {
		BeforeEach(func() {
			response = &visionpb.BatchAnnotateImagesResponse{
				Responses: []*visionpb.AnnotateImageResponse{{
					Error: &status.Status{Code: 3, Message: "Bad image data."},
				}},
			}
		})

		It("returns the annotate error", func() {
			Expect(err).To(MatchError(ContainSubstring("Bad image data.")))
		})
	})

	When("the call fails", func() {
		BeforeEach(func() {
			callErr = errors.New("permission denied")
		})

		It("wraps the error", func() {
			Expect(err).To(MatchError(ContainSubstring("permission denied")))
			Expect(errors.Is(err, callErr)).To(BeTrue())
		})
	})
})
