package xml_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parsegate/internal/catalog"
	xmldetect "parsegate/internal/detect/xml"
	"parsegate/internal/domain"
)

func sessionCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cases := []domain.ParseCase{
		{
			Name:       xmldetect.CaseSingleSession,
			FormatType: domain.FormatXML,
			IsActive:   true,
			Attributes: []domain.AttributeDefinition{
				{Name: "study_uid", Locator: "//ResponseHeader/StudyInstanceUID", Required: true, Position: 0},
				{Name: "session_count", Locator: "count(//readingSession)", Required: true, Position: 1},
				{Name: "characteristics", Locator: "//unblindedReadNodule/characteristics", Required: false, Position: 2},
			},
		},
		{Name: xmldetect.CaseMultiSession2, FormatType: domain.FormatXML, IsActive: true},
		{Name: xmldetect.CaseMultiSession4, FormatType: domain.FormatXML, IsActive: true},
		{Name: xmldetect.CaseWithReasonPartial, FormatType: domain.FormatXML, IsActive: true},
		{Name: xmldetect.CaseCoreAttributesOnly, FormatType: domain.FormatXML, IsActive: true},
		{Name: xmldetect.CaseCompleteAttributes, FormatType: domain.FormatXML, IsActive: true},
	}
	cat, err := catalog.New(cases)
	require.NoError(t, err)
	return cat
}

func doc(name, content string) *domain.Document {
	return &domain.Document{
		Filename: name,
		Format:   domain.FormatXML,
		Content:  []byte(content),
		Size:     int64(len(content)),
	}
}

const singleSessionXML = `<LidcReadMessage>
  <ResponseHeader>
    <StudyInstanceUID>1.3.6.1.4.1</StudyInstanceUID>
  </ResponseHeader>
  <readingSession>
    <unblindedReadNodule>
      <characteristics><subtlety>4</subtlety></characteristics>
    </unblindedReadNodule>
  </readingSession>
</LidcReadMessage>`

func TestCanHandle(t *testing.T) {
	d := xmldetect.NewDetector(sessionCatalog(t))

	assert.True(t, d.CanHandle(&domain.Document{Format: domain.FormatXML}))
	assert.True(t, d.CanHandle(&domain.Document{Filename: "Scan.XML"}))
	assert.False(t, d.CanHandle(&domain.Document{Format: domain.FormatCSV, Filename: "scan.xml"}))
	assert.False(t, d.CanHandle(&domain.Document{Filename: "scan.json"}))
}

func TestAnalyze_SingleSession(t *testing.T) {
	d := xmldetect.NewDetector(sessionCatalog(t))

	raw, err := d.Analyze(context.Background(), doc("scan.xml", singleSessionXML))
	require.NoError(t, err)

	assert.Equal(t, xmldetect.CaseSingleSession, raw.ParseCase)
	assert.Equal(t, 1, raw.Metadata.SessionCount)
	assert.Equal(t, "LidcReadMessage", raw.Metadata.RootElement)

	byName := map[string]domain.AttributeFinding{}
	for _, f := range raw.Findings {
		byName[f.Name] = f
	}
	require.Len(t, byName, 3)
	assert.True(t, byName["study_uid"].Found)
	assert.Equal(t, "1.3.6.1.4.1", byName["study_uid"].Value)
	assert.True(t, byName["session_count"].Found)
	assert.Equal(t, "1", byName["session_count"].Value)
	assert.True(t, byName["characteristics"].Found)

	// Known root + session + characteristics + study UID: full raw score.
	assert.InDelta(t, 1.0, raw.Confidence, 1e-9)
}

func TestAnalyze_SessionCountSelectsCase(t *testing.T) {
	d := xmldetect.NewDetector(sessionCatalog(t))

	two := `<LidcReadMessage><readingSession/><readingSession/></LidcReadMessage>`
	raw, err := d.Analyze(context.Background(), doc("two.xml", two))
	require.NoError(t, err)
	assert.Equal(t, xmldetect.CaseMultiSession2, raw.ParseCase)

	five := `<LidcReadMessage>` + strings.Repeat("<readingSession/>", 5) + `</LidcReadMessage>`
	raw, err = d.Analyze(context.Background(), doc("five.xml", five))
	require.NoError(t, err)
	assert.Equal(t, xmldetect.CaseMultiSession4, raw.ParseCase)
	assert.Equal(t, 5, raw.Metadata.SessionCount)
}

func TestAnalyze_LegacySessionInfoCounts(t *testing.T) {
	d := xmldetect.NewDetector(sessionCatalog(t))

	legacy := `<LidcReadMessage><readingSessionInfo/><readingSessionInfo/></LidcReadMessage>`
	raw, err := d.Analyze(context.Background(), doc("legacy.xml", legacy))
	require.NoError(t, err)
	assert.Equal(t, 2, raw.Metadata.SessionCount)
	assert.Equal(t, xmldetect.CaseMultiSession2, raw.ParseCase)
}

func TestAnalyze_ReasonForMissingWinsOverSessions(t *testing.T) {
	d := xmldetect.NewDetector(sessionCatalog(t))

	partial := `<LidcReadMessage><readingSession><reasonForMissing>occluded</reasonForMissing></readingSession></LidcReadMessage>`
	raw, err := d.Analyze(context.Background(), doc("partial.xml", partial))
	require.NoError(t, err)
	assert.Equal(t, xmldetect.CaseWithReasonPartial, raw.ParseCase)
}

func TestAnalyze_BareNoduleListIsCoreCase(t *testing.T) {
	d := xmldetect.NewDetector(sessionCatalog(t))

	core := `<IdriReadMessage><unblindedReadNodule/></IdriReadMessage>`
	raw, err := d.Analyze(context.Background(), doc("core.xml", core))
	require.NoError(t, err)
	assert.Equal(t, xmldetect.CaseCoreAttributesOnly, raw.ParseCase)
}

func TestAnalyze_NearMissNote(t *testing.T) {
	d := xmldetect.NewDetector(sessionCatalog(t))

	// StudyInstanceUid differs from the expected StudyInstanceUID by case
	// only at the leaf, and the locator path does not resolve.
	renamed := `<LidcReadMessage>
  <ResponseHeader><StudyInstanceUuid>1.2.3</StudyInstanceUuid></ResponseHeader>
  <readingSession/>
</LidcReadMessage>`
	raw, err := d.Analyze(context.Background(), doc("renamed.xml", renamed))
	require.NoError(t, err)

	var uid domain.AttributeFinding
	for _, f := range raw.Findings {
		if f.Name == "study_uid" {
			uid = f
		}
	}
	assert.False(t, uid.Found)
	assert.Equal(t, "near miss: StudyInstanceUuid", uid.Note)
}

func TestAnalyze_Unreadable(t *testing.T) {
	d := xmldetect.NewDetector(sessionCatalog(t))

	cases := map[string]string{
		"empty":     "",
		"malformed": "<a><b></a>",
		"truncated": "<a><b>",
		"two roots": "<a/><b/>",
	}
	for name, content := range cases {
		_, err := d.Analyze(context.Background(), doc(name+".xml", content))
		assert.ErrorIs(t, err, domain.ErrDocumentUnreadable, name)
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	d := xmldetect.NewDetector(sessionCatalog(t))

	first, err := d.Analyze(context.Background(), doc("scan.xml", singleSessionXML))
	require.NoError(t, err)
	second, err := d.Analyze(context.Background(), doc("scan.xml", singleSessionXML))
	require.NoError(t, err)

	assert.Equal(t, first.ParseCase, second.ParseCase)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.Findings, second.Findings)
}
