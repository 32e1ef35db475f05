package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scandesk/docproc/constants"
	"github.com/scandesk/docproc/internal/llm"
	"github.com/scandesk/docproc/internal/pipeline"
)

func TestPipeline(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Pipeline Suite")
}

type fakeExtractor struct {
	resp    json.RawMessage
	err     error
	calls   int
	lastReq llm.ExtractRequest
}

func (f *fakeExtractor) Extract(_ context.Context, req llm.ExtractRequest) (json.RawMessage, error) {
	f.calls++
	f.lastReq = req
	return f.resp, f.err
}

var _ = Describe("Pipeline", func() {
	var (
		extractor *fakeExtractor
		pipe      *pipeline.Pipeline
		rec       pipeline.Record
		out       pipeline.Record
	)

	receiptText := "STORE A\nTOTAL: $12.99\nCASH $12.99\n01/02/2023"

	BeforeEach(func() {
		extractor = &fakeExtractor{resp: json.RawMessage(`{"store_name":"STORE A"}`)}
		pipe = pipeline.New(extractor, nil)
		rec = pipeline.Record{SourcePath: "/in/receipt.png", RawText: receiptText}
	})

	JustBeforeEach(func() {
		out = pipe.Run(context.Background(), rec)
	})

	When("the text classifies as a receipt", func() {
		It("runs every stage and attaches structured data", func() {
			Expect(out.Failed()).To(BeFalse())
			Expect(out.NormalizedText).To(Equal(receiptText))
			Expect(out.Classification).NotTo(BeNil())
			Expect(out.Classification.Type).To(Equal(constants.Receipt))
			Expect(out.StructuredData).To(MatchJSON(`{"store_name":"STORE A"}`))
		})

		It("hands the extractor the normalized text and document type", func() {
			Expect(extractor.calls).To(Equal(1))
			Expect(extractor.lastReq.Text).To(Equal(receiptText))
			Expect(extractor.lastReq.DocType).To(Equal(constants.Receipt))
			Expect(extractor.lastReq.SourceHint).To(Equal("/in/receipt.png"))
		})
	})

	When("the text classifies as other", func() {
		BeforeEach(func() {
			rec.RawText = "meeting minutes, quarterly planning"
		})

		It("skips extraction without reporting an error", func() {
			Expect(extractor.calls).To(BeZero())
			Expect(out.Failed()).To(BeFalse())
			Expect(out.StructuredData).To(BeNil())
			Expect(out.Note).NotTo(BeEmpty())
			Expect(out.Classification).NotTo(BeNil())
			Expect(out.Classification.Type).To(Equal(constants.Other))
		})
	})

	When("the record already carries an upstream error", func() {
		BeforeEach(func() {
			rec.RawText = ""
			rec.Err = "OCR processing failed: exit status 1"
		})

		It("runs no stages and preserves the error", func() {
			Expect(extractor.calls).To(BeZero())
			Expect(out.Err).To(Equal("OCR processing failed: exit status 1"))
			Expect(out.NormalizedText).To(BeEmpty())
			Expect(out.Classification).To(BeNil())
			Expect(out.StructuredData).To(BeNil())
		})
	})

	When("extraction fails", func() {
		BeforeEach(func() {
			extractor.resp = nil
			extractor.err = errors.New("llm unreachable")
		})

		It("marks the record failed but keeps the earlier stage output", func() {
			Expect(out.Failed()).To(BeTrue())
			Expect(out.Err).To(Equal("data extraction failed: llm unreachable"))
			Expect(out.NormalizedText).To(Equal(receiptText))
			Expect(out.Classification).NotTo(BeNil())
			Expect(out.StructuredData).To(BeNil())
		})
	})
})

var _ = Describe("Record.Result", func() {
	It("serializes with the wire field names", func() {
		rec := pipeline.Record{
			SourcePath:     "/in/a.pdf",
			RawText:        "raw",
			NormalizedText: "clean",
		}
		res := rec.Result(time.Now().Add(-50 * time.Millisecond))

		data, err := json.Marshal(res)
		Expect(err).NotTo(HaveOccurred())

		var m map[string]any
		Expect(json.Unmarshal(data, &m)).To(Succeed())
		Expect(m).To(HaveKey("source_path"))
		Expect(m).To(HaveKey("raw_text"))
		Expect(m).To(HaveKey("cleaned_text"))
		Expect(m).To(HaveKey("processed_at"))
		Expect(m).To(HaveKey("duration_ms"))
		Expect(m).NotTo(HaveKey("classification"))
		Expect(m).NotTo(HaveKey("structured_data"))
		Expect(m).NotTo(HaveKey("error"))
	})

	It("reports a non-negative duration", func() {
		res := pipeline.Record{}.Result(time.Now())
		Expect(res.DurationMS).To(BeNumerically(">=", 0))
	})
})
