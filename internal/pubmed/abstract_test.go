// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pubmed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleEfetchXML = `<?xml version="1.0" ?>
<!DOCTYPE PubmedArticleSet PUBLIC "-//NLM//DTD PubMedArticle, 1st January 2024//EN" "https://dtd.nlm.nih.gov/ncbi/pubmed/out/pubmed_240101.dtd">
<PubmedArticleSet>
<PubmedArticle>
  <MedlineCitation Status="PubMed-not-MEDLINE" Owner="NLM">
    <PMID Version="1">38000001</PMID>
    <Article PubModel="Print-Electronic">
      <ArticleTitle>Renal outcomes in hypertensive nephropathy.</ArticleTitle>
      <Abstract>
        <AbstractText Label="BACKGROUND">Hypertensive nephropathy is common.</AbstractText>
        <AbstractText Label="RESULTS">We enrolled 245 patients; eGFR <i>declined</i> &lt; 5%.</AbstractText>
      </Abstract>
    </Article>
  </MedlineCitation>
</PubmedArticle>
<PubmedArticle>
  <MedlineCitation Status="MEDLINE" Owner="NLM">
    <PMID Version="1">38000002</PMID>
    <Article PubModel="Print">
      <ArticleTitle>Editorial without abstract.</ArticleTitle>
    </Article>
  </MedlineCitation>
</PubmedArticle>
<PubmedArticle>
  <MedlineCitation Status="MEDLINE" Owner="NLM">
    <Article PubModel="Print">
      <Abstract><AbstractText>Orphan record with no identifier.</AbstractText></Abstract>
    </Article>
  </MedlineCitation>
</PubmedArticle>
<PubmedArticle>
  <MedlineCitation Status="MEDLINE" Owner="NLM">
    <PMID Version="1">38000003</PMID>
    <Article PubModel="Print">
      <Abstract><AbstractText></AbstractText><AbstractText>Only the second segment has text.</AbstractText></Abstract>
    </Article>
  </MedlineCitation>
</PubmedArticle>
</PubmedArticleSet>`

func TestParseAbstracts(t *testing.T) {
	got := ParseAbstracts(strings.NewReader(sampleEfetchXML))

	require.Len(t, got, 3)
	assert.Equal(t, "Hypertensive nephropathy is common. We enrolled 245 patients; eGFR declined < 5%.", got["38000001"])
	assert.Equal(t, "", got["38000002"])
	assert.Equal(t, "Only the second segment has text.", got["38000003"])
}

func TestParseAbstracts_CountsRecordsWithAndWithoutAbstracts(t *testing.T) {
	var b strings.Builder
	b.WriteString("<PubmedArticleSet>")
	for i := 0; i < 4; i++ {
		b.WriteString(`<PubmedArticle><MedlineCitation><PMID>10` + string(rune('0'+i)) + `</PMID><Article><Abstract><AbstractText>text</AbstractText></Abstract></Article></MedlineCitation></PubmedArticle>`)
	}
	for i := 0; i < 3; i++ {
		b.WriteString(`<PubmedArticle><MedlineCitation><PMID>20` + string(rune('0'+i)) + `</PMID><Article/></MedlineCitation></PubmedArticle>`)
	}
	b.WriteString("</PubmedArticleSet>")

	got := ParseAbstracts(strings.NewReader(b.String()))
	require.Len(t, got, 7)
	empty := 0
	for _, v := range got {
		if v == "" {
			empty++
		}
	}
	assert.Equal(t, 3, empty)
}

func TestParseAbstracts_TruncatedDocumentKeepsEarlierRecords(t *testing.T) {
	doc := `<PubmedArticleSet>
<PubmedArticle><MedlineCitation><PMID>111</PMID><Article><Abstract><AbstractText>Complete.</AbstractText></Abstract></Article></MedlineCitation></PubmedArticle>
<PubmedArticle><MedlineCitation><PMID>222</PMID><Article><Abstract><AbstractText>Cut off`

	got := ParseAbstracts(strings.NewReader(doc))
	assert.Equal(t, "Complete.", got["111"])
	assert.NotContains(t, got, "222")
}

func TestParseAbstracts_NonNumericPMIDSkipped(t *testing.T) {
	doc := `<PubmedArticleSet><PubmedArticle><MedlineCitation><PMID>abc</PMID></MedlineCitation></PubmedArticle></PubmedArticleSet>`
	assert.Empty(t, ParseAbstracts(strings.NewReader(doc)))
}

func TestParseAbstracts_Garbage(t *testing.T) {
	assert.Empty(t, ParseAbstracts(strings.NewReader("not xml at all")))
	assert.Empty(t, ParseAbstracts(strings.NewReader("")))
}
