package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scandesk/docproc/constants"
	"github.com/scandesk/docproc/internal/common"
	"github.com/scandesk/docproc/internal/llm"
)

func TestOpenAI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "OpenAI Client Suite")
}

const cleanReceipt = `{
	"store_name": "STORE A",
	"date": "2023-01-02",
	"items": [
		{"name": "COFFEE", "number": 1, "price_single": 3.50, "price_total": 3.50, "vat_code": "A"}
	],
	"sub_total": 3.50,
	"tax": 0.28,
	"tip": 0.00,
	"total": 3.78
}`

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(b)
}

var _ = Describe("Client.Extract", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
		client  *Client
		lenient bool

		result json.RawMessage
		err    error
	)

	req := llm.ExtractRequest{
		Text:    "STORE A\nTOTAL: $3.78",
		DocType: constants.Receipt,
	}

	BeforeEach(func() {
		lenient = false
		handler = func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(completionBody(cleanReceipt)))
		}
	})

	JustBeforeEach(func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
		DeferCleanup(server.Close)

		client = NewClient(Config{
			APIKey:        "test-key",
			BaseURL:       server.URL,
			Model:         "fused_3b",
			LenientFields: lenient,
		}, nil)
		result, err = client.Extract(context.Background(), req)
	})

	When("the model returns schema-conforming JSON", func() {
		It("returns the content untouched", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(MatchJSON(cleanReceipt))
		})
	})

	When("the request is posted", func() {
		var (
			gotAuth string
			gotBody map[string]any
		)

		BeforeEach(func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				json.NewDecoder(r.Body).Decode(&gotBody)
				w.Write([]byte(completionBody(cleanReceipt)))
			}
		})

		It("carries the bearer key, model, and schema constraint", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(gotAuth).To(Equal("Bearer test-key"))
			Expect(gotBody["model"]).To(Equal("fused_3b"))

			rf, ok := gotBody["response_format"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(rf["type"]).To(Equal("json_schema"))

			msgs, ok := gotBody["messages"].([]any)
			Expect(ok).To(BeTrue())
			Expect(msgs).To(HaveLen(2))
			user := msgs[1].(map[string]any)
			Expect(user["content"]).To(ContainSubstring("Document type: receipt"))
		})
	})

	When("the completion endpoint returns an error status", func() {
		BeforeEach(func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not loaded", http.StatusServiceUnavailable)
			}
		})

		It("fails with the status in the error", func() {
			Expect(err).To(MatchError(ContainSubstring("completion status 503")))
			Expect(result).To(BeNil())
		})
	})

	When("the completion has no choices", func() {
		BeforeEach(func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"choices": []}`))
			}
		})

		It("fails with the extraction sentinel", func() {
			Expect(err).To(MatchError(ContainSubstring("no choices")))
			Expect(err).To(MatchError(common.ErrExtraction))
		})
	})

	When("the content misses the schema and lenient fields are off", func() {
		BeforeEach(func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(completionBody(`{"store_name": "STORE A"}`)))
			}
		})

		It("fails validation with the extraction sentinel", func() {
			Expect(err).To(MatchError(ContainSubstring("schema validation failed")))
			Expect(err).To(MatchError(common.ErrExtraction))
		})
	})

	When("the content narrowly misses the schema and lenient fields are on", func() {
		BeforeEach(func() {
			lenient = true
			almost := `{
				"store_name": "STORE A",
				"store_phone": null,
				"date": "2023-01-02",
				"items": [
					{"name": "COFFEE", "number": "1", "price_single": "$3.50", "price_total": "3.50", "vat_code": "A"}
				],
				"sub_total": "3.50",
				"tax": "0.28",
				"tip": 0.00,
				"total": "$3.78"
			}`
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(completionBody(almost)))
			}
		})

		It("sanitizes once and returns validating JSON", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(llm.ValidateReceipt(result)).To(Succeed())
			Expect(string(result)).NotTo(ContainSubstring("store_phone"))
		})
	})

	When("the content is beyond repair even with lenient fields", func() {
		BeforeEach(func() {
			lenient = true
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(completionBody(`{"store_name": "STORE A"}`)))
			}
		})

		It("fails the second validation pass", func() {
			Expect(err).To(MatchError(ContainSubstring("schema validation failed")))
		})
	})
})
