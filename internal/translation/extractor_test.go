package translation

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const safariPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Desert Safari</title>
</head>
<body>
  <h1 class="tour-heading">Desert Safari</h1>
  <h2 class="section">About This Tour</h2>
  <p>An evening in the <em>dunes</em>
     with dinner.</p>
  <h2>Tour Highlights</h2>
  <ul>
    <li>Camel ride</li>
    <li> Sunset <strong>views</strong> </li>
  </ul>
  <h2>What's Included</h2>
  <ul><li>Hotel pickup</li><li>BBQ dinner</li></ul>
  <h2>What's Not Included</h2>
  <ul><li>Quad bikes</li></ul>
  <h2>Not Suitable For</h2>
  <ul><li>Pregnant women</li><li>Back problems</li></ul>
  <h2>Detailed Description</h2>
  <div><p>Leave the city behind.</p></div>
  <h2>FAQ</h2>
  <h3>Is pickup included?</h3>
  <p>Yes, from all hotels.</p>
  <h3>How long is the tour?</h3>
  <p>About six hours.</p>
  <h2>Reviews</h2>
  <h3>Amazing</h3>
  <p>Loved it.</p>
</body>
</html>`

func TestExtractCanonicalPage(t *testing.T) {
	t.Parallel()

	got := Extract(safariPage)

	require.Equal(t, Content{
		Title:               "Desert Safari",
		AboutTour:           "An evening in the dunes\n     with dinner.",
		Highlights:          "Camel ride\nSunset views",
		Included:            "Hotel pickup\nBBQ dinner",
		NotIncluded:         "Quad bikes",
		NotSuitableFor:      "Pregnant women\nBack problems",
		DetailedDescription: "Leave the city behind.",
		FAQ: []FAQEntry{
			{Question: "Is pickup included?", Answer: "Yes, from all hotels."},
			{Question: "How long is the tour?", Answer: "About six hours."},
		},
	}, got)
}

func TestExtractDesertSafariScenario(t *testing.T) {
	t.Parallel()

	doc := `<h1>Desert Safari</h1><h2>Tour Highlights</h2><ul><li>Camel ride</li><li>Sunset views</li></ul>`
	got := Extract(doc)

	require.Equal(t, "Desert Safari", got.Title)
	require.Equal(t, "Camel ride\nSunset views", got.Highlights)
}

func TestExtractDefaults(t *testing.T) {
	t.Parallel()

	got := Extract(`<html><body><p>Nothing to see here.</p></body></html>`)

	require.Equal(t, Content{Title: TitleNotFound, FAQ: []FAQEntry{}}, got)
	require.NotNil(t, got.FAQ)
}

func TestExtractTitleFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "title element wins", doc: `<title> Dhow Cruise </title><h1>Other</h1>`, want: "Dhow Cruise"},
		{name: "first h1", doc: `<h1 id="x">City <span>Tour</span></h1><h1>Second</h1>`, want: "City Tour"},
		{name: "empty title falls through", doc: `<title>  </title><h1>Museum Pass</h1>`, want: "Museum Pass"},
		{name: "tour-title marker", doc: `<div class="hero tour-title">Abu Dhabi Trip</div>`, want: "Abu Dhabi Trip"},
		{name: "sentinel", doc: `<p>No title</p>`, want: TitleNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Extract(tc.doc).Title)
		})
	}
}

func TestExtractFirstMatchWins(t *testing.T) {
	t.Parallel()

	// The h3 block appears first in the document, but the h2 rule is tried first.
	doc := `<h3>About This Tour</h3><p>From h3</p>
<h2>About This Tour</h2><p>From h2</p>`
	require.Equal(t, "From h2", Extract(doc).AboutTour)

	doc = `<div class="description">Generic block</div>
<h2>Detailed Description</h2><div>Specific block</div>`
	require.Equal(t, "Specific block", Extract(doc).DetailedDescription)
}

func TestExtractHeadingVariants(t *testing.T) {
	t.Parallel()

	doc := `<h3 class="x">Highlights</h3><ul><li>Falcon show</li></ul>
<h2>What&#39;s Included</h2><ul><li>Water</li></ul>
<h2>What’s Not Included</h2><ul><li>Tips</li></ul>
<h3>Description</h3><p>Short description.</p>`
	got := Extract(doc)

	require.Equal(t, "Falcon show", got.Highlights)
	require.Equal(t, "Water", got.Included)
	require.Equal(t, "Tips", got.NotIncluded)
	require.Equal(t, "Short description.", got.DetailedDescription)
}

func TestExtractLooseLabel(t *testing.T) {
	t.Parallel()

	doc := `<div class="card"><span>About This Tour</span>
  <p>Loose body.</p></div>`
	require.Equal(t, "Loose body.", Extract(doc).AboutTour)
}

func TestExtractNotSuitableForWarningBlock(t *testing.T) {
	t.Parallel()

	doc := `<div class="alert warning">Not recommended for <b>pregnant</b> women.</div>`
	require.Equal(t, "Not recommended for pregnant women.", Extract(doc).NotSuitableFor)
}

func TestExtractEmptyListFallsThrough(t *testing.T) {
	t.Parallel()

	doc := `<h2>Tour Highlights</h2><ul>  </ul>
<h3>Highlights</h3><ul><li></li><li>Dune bashing</li></ul>`
	require.Equal(t, "Dune bashing", Extract(doc).Highlights)
}

func TestExtractFAQOrderAcrossPatterns(t *testing.T) {
	t.Parallel()

	doc := `<h1>Tour</h1>
<h3>Frequently Asked Questions</h3>
<h4>What should I wear?</h4>
<p>Light clothes.</p>
<strong>Can children join?</strong>
<p>Yes, over five.</p>
<b>Is food halal?</b> <p>Yes.</p>
<h4>Empty answer?</h4><p> </p>
<h3>Booking</h3>
<strong>Outside the section</strong><p>Ignored.</p>`

	got := Extract(doc).FAQ

	require.Equal(t, []FAQEntry{
		{Question: "What should I wear?", Answer: "Light clothes."},
		{Question: "Can children join?", Answer: "Yes, over five."},
		{Question: "Is food halal?", Answer: "Yes."},
	}, got)
}

func TestExtractFAQRunsToEndOfDocument(t *testing.T) {
	t.Parallel()

	doc := `<h2>FAQ</h2><h3>One?</h3><p>1</p><h3>Two?</h3><p>2</p><h3>Three?</h3><p>3</p>`
	got := Extract(doc).FAQ

	require.Len(t, got, 3)
	for i, want := range []string{"One?", "Two?", "Three?"} {
		require.Equal(t, want, got[i].Question)
		require.NotEmpty(t, got[i].Answer)
	}
}

func TestExtractToleratesMalformedInput(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"<",
		"<h2>FAQ",
		"<h2>Tour Highlights</h2><ul><li>unterminated",
		"<title>",
		"<div class=\"warning\">",
		string([]byte{0xff, 0xfe, '<', 'h', '1', '>'}),
	}
	for _, in := range inputs {
		in := in
		require.NotPanics(t, func() { Extract(in) })
	}
}

func TestExtractorGuardLogsAndRecovers(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	e := NewExtractor(WithLogger(zap.New(core)))

	ran := false
	e.guard(FieldHighlights, func() {
		ran = true
		panic("boom")
	})

	require.True(t, ran)
	entries := logs.FilterMessage("field extraction failed; using default").All()
	require.Len(t, entries, 1)
	require.Equal(t, "highlights", entries[0].ContextMap()["field"])
}

func TestExtractFAQStopsAtContainerClose(t *testing.T) {
	t.Parallel()

	doc := `<main><h2>FAQ</h2><h3>Inside?</h3><p>Yes.</p></main><aside><h3>Outside?</h3><p>No.</p></aside>`
	require.Equal(t, []FAQEntry{{Question: "Inside?", Answer: "Yes."}}, Extract(doc).FAQ)
}

func TestExtractFAQWithWrappedItems(t *testing.T) {
	t.Parallel()

	doc := `<h2>FAQ</h2><article><h3>Q1?</h3><p>A1</p></article><article><h3>Q2?</h3><p>A2</p></article><h2>Reviews</h2><h3>Great?</h3><p>Yes</p>`
	require.Equal(t, []FAQEntry{
		{Question: "Q1?", Answer: "A1"},
		{Question: "Q2?", Answer: "A2"},
	}, Extract(doc).FAQ)
}

func TestExtractFAQStopsBeforeContainerHoldingNextHeading(t *testing.T) {
	t.Parallel()

	doc := `<h2>FAQ</h2><section><h3>Q1?</h3><p>A1</p></section><section class="reviews"><h2>Reviews</h2><h3>Great?</h3><p>Yes</p></section>`
	require.Equal(t, []FAQEntry{{Question: "Q1?", Answer: "A1"}}, Extract(doc).FAQ)
}

func TestExtractFAQEmphasisQuestions(t *testing.T) {
	t.Parallel()

	doc := `<h2>FAQ</h2><em>Is it shaded?</em><p>Partly.</p><strong>Water?</strong><p>Included.</p>`
	require.Equal(t, []FAQEntry{
		{Question: "Is it shaded?", Answer: "Partly."},
		{Question: "Water?", Answer: "Included."},
	}, Extract(doc).FAQ)
}

func TestExtractNestedDescriptionStopsAtFirstClose(t *testing.T) {
	t.Parallel()

	doc := `<h2>Detailed Description</h2><div><div>New</div><p>Part two.</p></div>`
	require.Equal(t, "New", Extract(doc).DetailedDescription)
}
