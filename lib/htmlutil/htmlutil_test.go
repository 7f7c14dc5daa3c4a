package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parseFragment(t testing.TB, markup string) *html.Node {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestGetText(t *testing.T) {
	doc := parseFragment(t, `<div>Head: <b>2</b><script>track()</script><style>p{}</style> Legs: 4</div>`)
	require.Equal(t, "Head: 2 Legs: 4", GetText(doc))
	require.Equal(t, "", GetText(nil))
}

func TestNormalize(t *testing.T) {
	require.Equal(t, "RSB-ROBO-ORDER-1 Address", Normalize("\n\t RSB-ROBO-ORDER-1 \n\n   Address \t"))
}

func TestBasicMarkup(t *testing.T) {
	doc := parseFragment(t, `
		<h3>Receipt</h3>
		<div>2024-01-01</div>
		<p class="badge badge-success">RSB-ROBO-ORDER-1</p>
		<p>Main St 1</p>
		<div id="parts">
			<div>Head: <strong>1</strong></div>
			<div>Legs: 4</div>
		</div>
		<script>alert("x")</script>
	`)

	require.Equal(
		t,
		"<b>Receipt</b><br>2024-01-01<br>RSB-ROBO-ORDER-1<br>Main St 1<br>Head: <b>1</b><br>Legs: 4<br>",
		BasicMarkup(doc, nil),
	)
}

func TestBasicMarkupTranslate(t *testing.T) {
	doc := parseFragment(t, `<p>a < b</p>`)
	require.Equal(t, "A ( B<br>", BasicMarkup(doc, strings.ToUpper))
}
