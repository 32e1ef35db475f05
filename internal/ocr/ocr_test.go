package ocr

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scandesk/docproc/constants"
	"github.com/scandesk/docproc/internal/common"
)

func TestOCR(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "OCR Suite")
}

// stubRunner records invocations and plays back canned output per binary.
type stubRunner struct {
	stdout map[string][]byte
	errs   map[string]error
	calls  [][]string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	if err := s.errs[name]; err != nil {
		return nil, []byte("stub failure"), err
	}
	return s.stdout[name], nil, nil
}

var _ = Describe("Extractor", func() {
	var (
		runner *stubRunner
		ex     *Extractor
	)

	BeforeEach(func() {
		runner = &stubRunner{stdout: map[string][]byte{}, errs: map[string]error{}}
		ex = NewExtractor(Config{}, nil)
		ex.runner = runner
	})

	Describe("Extract dispatch", func() {
		It("rejects unsupported extensions", func() {
			_, err := ex.Extract(context.Background(), "/in/notes.txt")
			Expect(err).To(MatchError(ContainSubstring("unsupported extension")))
			Expect(err).To(MatchError(common.ErrUnsupportedFormat))
		})
	})

	Describe("image OCR", func() {
		When("tesseract succeeds", func() {
			BeforeEach(func() {
				runner.stdout["tesseract"] = []byte("STORE A\nTOTAL: $12.99\n01/02/2023\n")
			})

			It("returns single-page image text with a confidence estimate", func() {
				res, err := ex.Extract(context.Background(), "/in/receipt.png")
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Method).To(Equal("image-ocr"))
				Expect(res.SourceType).To(Equal(constants.IMAGE))
				Expect(res.Pages).To(Equal(1))
				Expect(res.Text).To(ContainSubstring("TOTAL: $12.99"))
				Expect(res.Confidence).To(BeNumerically(">", 0.2))
			})

			It("passes the language flag to tesseract", func() {
				_, err := ex.Extract(context.Background(), "/in/receipt.jpg")
				Expect(err).NotTo(HaveOccurred())
				Expect(runner.calls).To(HaveLen(1))
				Expect(runner.calls[0]).To(Equal([]string{"tesseract", "/in/receipt.jpg", "stdout", "-l", "eng"}))
			})
		})

		When("tesseract fails", func() {
			BeforeEach(func() {
				runner.errs["tesseract"] = errors.New("exit status 1")
			})

			It("propagates the failure with stderr in the warnings", func() {
				res, err := ex.Extract(context.Background(), "/in/receipt.png")
				Expect(err).To(MatchError(ContainSubstring("tesseract")))
				Expect(res.Warnings).To(ContainElement("stub failure"))
			})
		})

		It("strips box-drawing noise lines from the output", func() {
			runner.stdout["tesseract"] = []byte("STORE A\n------\nTOTAL 5.00\n")
			res, err := ex.Extract(context.Background(), "/in/receipt.png")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Text).NotTo(ContainSubstring("------"))
			Expect(res.Text).To(ContainSubstring("STORE A"))
			Expect(res.Text).To(ContainSubstring("TOTAL 5.00"))
		})
	})

	Describe("pdfToText", func() {
		It("counts pages by form feed separators", func() {
			runner.stdout["pdftotext"] = []byte("page one\fpage two\fpage three")
			text, pages, _, err := ex.pdfToText(context.Background(), "/in/doc.pdf")
			Expect(err).NotTo(HaveOccurred())
			Expect(pages).To(Equal(3))
			Expect(text).To(ContainSubstring("page two"))
		})

		It("invokes pdftotext with layout preserved and stdout output", func() {
			runner.stdout["pdftotext"] = []byte("text")
			_, _, _, err := ex.pdfToText(context.Background(), "/in/doc.pdf")
			Expect(err).NotTo(HaveOccurred())
			Expect(runner.calls[0]).To(Equal([]string{
				"pdftotext", "-layout", "-enc", "UTF-8", "-eol", "unix", "/in/doc.pdf", "-",
			}))
		})
	})
})

var _ = Describe("heuristicConfidence", func() {
	It("starts from the base for empty text", func() {
		Expect(heuristicConfidence("")).To(BeNumerically("~", 0.2, 0.001))
	})

	It("adds signal for dates, currency, and amounts", func() {
		c := heuristicConfidence("Total $12.99 on 01/02/2023")
		Expect(c).To(BeNumerically("~", 0.7, 0.001))
	})

	It("rewards enough content", func() {
		long := ""
		for i := 0; i < 20; i++ {
			long += "plain words "
		}
		Expect(heuristicConfidence(long)).To(BeNumerically("~", 0.3, 0.001))
	})

	It("never exceeds one", func() {
		text := "Total $12.99 USD on 01/02/2023 " +
			"with a long tail of additional descriptive content to push the length " +
			"of this synthetic document well past the content threshold 45.00"
		Expect(heuristicConfidence(text)).To(BeNumerically("<=", 1.0))
	})
})
