package prompt_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bryanwahyu/complaint-analyst/internal/domain/complaints"
	"github.com/bryanwahyu/complaint-analyst/internal/infra/ai/prompt"
)

var _ = Describe("ResponseSchema", func() {
	It("requires all four fields and forbids extras", func() {
		b, err := json.Marshal(prompt.ResponseSchema())
		Expect(err).NotTo(HaveOccurred())

		var doc map[string]any
		Expect(json.Unmarshal(b, &doc)).To(Succeed())
		Expect(doc["type"]).To(Equal("object"))
		Expect(doc["required"]).To(ConsistOf("summary", "department", "analysis", "solutions"))
		Expect(doc["additionalProperties"]).To(BeFalse())
		Expect(doc).NotTo(HaveKey("$schema"))

		props := doc["properties"].(map[string]any)
		Expect(props["summary"].(map[string]any)["type"]).To(Equal("array"))
		Expect(props["department"].(map[string]any)["type"]).To(Equal("string"))
		Expect(props["department"].(map[string]any)["description"]).To(ContainSubstring("Public Works Department"))
	})
})

var _ = Describe("ParseAnalysis", func() {
	It("decodes a well-formed response", func() {
		got, err := prompt.ParseAnalysis(`
{"summary":["Garbage overflow"],"department":"Public Works","analysis":"...","solutions":["Increase pickup frequency"]}
`)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(complaints.AnalysisResult{
			Summary:    []string{"Garbage overflow"},
			Department: "Public Works",
			Analysis:   "...",
			Solutions:  []string{"Increase pickup frequency"},
		}))
	})

	It("accepts a fenced response", func() {
		got, err := prompt.ParseAnalysis("```json\n{\"summary\":[],\"department\":\"Health\",\"analysis\":\"a\",\"solutions\":[]}\n```")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Department).To(Equal("Health"))
		Expect(got.Summary).To(BeEmpty())
	})

	DescribeTable("rejects malformed output",
		func(content, msg string) {
			_, err := prompt.ParseAnalysis(content)
			Expect(err).To(MatchError(ContainSubstring(msg)))
		},
		Entry("empty", "  ", "empty response"),
		Entry("not json", "the department is roads", "not a JSON object"),
		Entry("array", `["a"]`, "not a JSON object"),
		Entry("missing solutions", `{"summary":[],"department":"d","analysis":"a"}`, `missing field "solutions"`),
		Entry("null department", `{"summary":[],"department":null,"analysis":"a","solutions":[]}`, `missing field "department"`),
		Entry("summary as string", `{"summary":"x","department":"d","analysis":"a","solutions":[]}`, `"summary" must be an array of strings`),
		Entry("analysis as number", `{"summary":[],"department":"d","analysis":3,"solutions":[]}`, `"analysis" must be a string`),
		Entry("blank department", `{"summary":[],"department":"  ","analysis":"a","solutions":[]}`, `"department" must be a non-empty string`),
		Entry("blank analysis", `{"summary":[],"department":"d","analysis":"","solutions":[]}`, `"analysis" must be a non-empty string`),
	)
})

var _ = Describe("GetUserPrompt", func() {
	It("passes the complaint through unchanged", func() {
		text := "പരാതി: മാലിന്യം\u200d നീക്കം\nSecond para \"quoted\""
		got := prompt.GetUserPrompt(text)
		Expect(got).To(HaveSuffix(`"` + text + `"`))
		Expect(got).To(ContainSubstring("\u200d"))
		Expect(got).NotTo(ContainSubstring(`\u200d`))
		Expect(got).NotTo(ContainSubstring(`\n`))
		Expect(got).NotTo(ContainSubstring(`\"`))
	})
})
