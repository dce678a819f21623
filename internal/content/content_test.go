package content

import (
	"net/url"
	"strings"
	"testing"
)

const paragraph = `The river town wakes slowly in winter. Fishermen check their nets before dawn,
bakers open their shutters to the smell of fresh bread, and children walk to school along the
frozen bank while the church bell counts the hours. Visitors often say the place feels
unchanged by time, although the new bridge and the small museum near the harbour tell a
different story about how the community has grown over the last twenty years.`

func articlePage() string {
	var b strings.Builder
	b.WriteString(`<html><head><title>Winter in the river town</title>
<meta name="author" content="Alex Doe">
<meta property="og:site_name" content="Town Journal">
</head><body><nav><a href="/">Home</a></nav><article><h1>Winter in the river town</h1>`)
	for i := 0; i < 5; i++ {
		b.WriteString("<p>")
		b.WriteString(paragraph)
		b.WriteString("</p>")
	}
	b.WriteString(`</article><footer>Copyright</footer></body></html>`)
	return b.String()
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	u, err := url.Parse("https://journal.example.com/winter")
	if err != nil {
		t.Fatal(err)
	}

	got, err := NewAnalyzer().Summarize(articlePage(), u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Title == "" {
		t.Error("expected a title")
	}
	wantWords := 5 * len(strings.Fields(paragraph))
	if got.WordCount < wantWords {
		t.Errorf("WordCount = %d, want at least %d", got.WordCount, wantWords)
	}
	if got.DetectedLanguage != "en" {
		t.Errorf("DetectedLanguage = %q, want en", got.DetectedLanguage)
	}
}

func TestSummarizeWithoutLanguageDetection(t *testing.T) {
	t.Parallel()

	u, err := url.Parse("https://journal.example.com/winter")
	if err != nil {
		t.Fatal(err)
	}

	got, err := NewAnalyzer(WithLanguageDetection(false)).Summarize(articlePage(), u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DetectedLanguage != "" {
		t.Errorf("DetectedLanguage = %q, want empty", got.DetectedLanguage)
	}
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "too short", text: "Hello there", want: ""},
		{name: "english", text: paragraph, want: "en"},
		{name: "german", text: strings.Repeat("Der schnelle braune Fuchs springt über den faulen Hund und läuft dann weiter in den Wald. ", 3), want: "de"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := DetectLanguage(tt.text); got != tt.want {
				t.Errorf("DetectLanguage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fragment string
		want     []string
	}{
		{
			name:     "adjacent paragraphs",
			fragment: "<p>The end of years.</p><p>The next one</p>",
			want:     []string{"The", "end", "of", "years.", "The", "next", "one"},
		},
		{
			name:     "list items and headings",
			fragment: "<h2>Menu</h2><ul><li>tea</li><li>coffee</li></ul>",
			want:     []string{"Menu", "tea", "coffee"},
		},
		{
			name:     "inline markup joins",
			fragment: "<p>brand<b>new</b> <em>site</em></p>",
			want:     []string{"brandnew", "site"},
		},
		{
			name:     "scripts are dropped",
			fragment: "<div>visible</div><script>var hidden = 1;</script>",
			want:     []string{"visible"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			text, err := plainText(tt.fragment)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := strings.Fields(text)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("plainText() words = %q, want %q", got, tt.want)
			}
		})
	}
}
