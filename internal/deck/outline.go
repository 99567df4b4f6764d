package deck

import (
	"fmt"
	"strings"
)

// Outline renders the deck as Markdown, one section per slide.
func Outline(d *Deck) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Topic)
	if d.Audience != "" {
		fmt.Fprintf(&b, "_For %s_\n\n", d.Audience)
	}

	for i, s := range d.Slides {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, s.Title)
		for _, bullet := range s.Bullets {
			fmt.Fprintf(&b, "- %s\n", bullet)
		}
		b.WriteString("\n")
		if s.Notes != "" {
			fmt.Fprintf(&b, "> %s\n\n", strings.ReplaceAll(s.Notes, "\n", " "))
		}
		if s.ImageAttribution != nil {
			fmt.Fprintf(&b, "Image: [%s](%s) by [%s](%s)\n\n",
				s.ImageKeyword, s.ImageURL, s.ImageAttribution.PhotographerName, s.ImageAttribution.PhotographerURL)
		}
	}
	return b.String()
}
