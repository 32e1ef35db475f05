package textproc

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scandesk/docproc/constants"
)

var _ = Describe("Classify", func() {
	It("returns other with zero confidence for empty input", func() {
		c := Classify("")

		Expect(c.Type).To(Equal(constants.Other))
		Expect(c.Confidence).To(BeZero())
	})

	It("classifies a simple cash receipt", func() {
		c := Classify("STORE A\nTOTAL: $12.99\nCASH $12.99\n01/02/2023")

		Expect(c.Type).To(Equal(constants.Receipt))
		Expect(c.Confidence).To(BeNumerically("==", 1.0))
	})

	It("classifies a keyword-dense receipt with several prices", func() {
		text := "MERCHANT COPY\nSUBTOTAL $10.00\nTAX $0.80\nTIP $2.00\nTOTAL $12.80\nCARD PAYMENT\n03/14/2024"
		c := Classify(text)

		Expect(c.Type).To(Equal(constants.Receipt))
		Expect(c.Confidence).To(BeNumerically(">", 0.6))
	})

	It("classifies an invoice with a number and a due date", func() {
		text := "INVOICE #1234\nBill To: ACME Corp\nDue Date: 01/02/2023\nAmount Due: 500.00"
		c := Classify(text)

		Expect(c.Type).To(Equal(constants.Invoice))
		Expect(c.Confidence).To(BeNumerically(">", 0.6))
	})

	It("prefers receipt when both signals are strong", func() {
		text := "RECEIPT\nSTORE\nINVOICE # 99\nSUBTOTAL $5.00\nTAX $0.40\nTOTAL $5.40\nCASH $6.00\nCHANGE DUE $0.60\n05/05/2024"
		c := Classify(text)

		Expect(c.Type).To(Equal(constants.Receipt))
	})

	It("falls back to other for unstructured text", func() {
		c := Classify("meeting notes from tuesday, nothing to see here")

		Expect(c.Type).To(Equal(constants.Other))
	})

	It("keeps confidence within [0, 1]", func() {
		inputs := []string{
			"",
			"total total total total $1.00 $2.00 $3.00 $4.00 01/01/2024",
			"invoice invoice due date amount due bill to net terms",
			"plain prose without any of the trigger words",
			"TOTAL $9.99",
		}
		for _, in := range inputs {
			c := Classify(in)
			Expect(c.Confidence).To(BeNumerically(">=", 0.0), "input %q", in)
			Expect(c.Confidence).To(BeNumerically("<=", 1.0), "input %q", in)
		}
	})
})
