package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	showAnswerLabel  = "Show answer"
	hideAnswerLabel  = "Hide answer"
	copyGlyph        = "⧉"
	copiedGlyph      = "✓"
	noResultsText    = "No results"
	translationLabel = "Translation / notes:"
	minCardWidth     = 24
)

// CopyState is the visual state of a card's copy control
type CopyState int

const (
	CopyIdle CopyState = iota
	CopyConfirmed
)

// Card is the view state of one rendered entry. Cards only live for one
// render pass.
type Card struct {
	Entry         Entry
	AnswerVisible bool
	CopyState     CopyState
}

// RenderCards builds a fresh card for every entry, answers hidden
func RenderCards(entries []Entry) []Card {
	cards := make([]Card, len(entries))
	for i, e := range entries {
		cards[i] = Card{Entry: e}
	}
	return cards
}

// ToggleAnswer flips the answer between hidden and shown
func (c *Card) ToggleAnswer() {
	c.AnswerVisible = !c.AnswerVisible
}

// DisclosureLabel is the text of the show/hide control
func (c Card) DisclosureLabel() string {
	if c.AnswerVisible {
		return hideAnswerLabel
	}
	return showAnswerLabel
}

// CopyIcon is the glyph of the copy control
func (c Card) CopyIcon() string {
	if c.CopyState == CopyConfirmed {
		return copiedGlyph
	}
	return copyGlyph
}

// View renders the card at the given outer width
func (c Card) View(f Formatter, width int, focused bool) string {
	if width < minCardWidth {
		width = minCardWidth
	}

	style := cardStyle
	if focused {
		style = focusedCardStyle
	}
	inner := width - style.GetHorizontalFrameSize()
	wrap := lipgloss.NewStyle().Width(inner)

	var parts []string

	parts = append(parts, cardIDStyle.Render(c.Entry.ID)+"  "+cardPageStyle.Render(c.Entry.Page))
	parts = append(parts, wrap.Render(taskLabelStyle.Render("Task:")+" "+c.Entry.Task))
	if c.Entry.HasTaskTranslation() {
		parts = append(parts, wrap.Render(translationStyle.Render(c.Entry.TaskTranslation)))
	}

	disclosure := buttonStyle.Render(c.DisclosureLabel())
	if c.AnswerVisible {
		disclosure = activeButtonStyle.Render(c.DisclosureLabel())
	}
	copyButton := buttonStyle.Render(c.CopyIcon())
	if c.CopyState == CopyConfirmed {
		copyButton = copiedButtonStyle.Render(c.CopyIcon())
	}
	parts = append(parts, "", disclosure+" "+copyButton)

	if c.AnswerVisible {
		parts = append(parts, "", c.answerView(f, inner))
	}

	return style.Width(width - style.GetHorizontalBorderSize()).Render(strings.Join(parts, "\n"))
}

func (c Card) answerView(f Formatter, width int) string {
	var b strings.Builder

	b.WriteString(answerLabelStyle.Render("Answer:"))
	b.WriteString("\n")
	b.WriteString(f.Format(c.Entry.Answer))

	if c.Entry.HasAnswerTranslation() {
		b.WriteString("\n")
		b.WriteString(dividerStyle.Render(strings.Repeat("╌", max(1, width))))
		b.WriteString("\n")
		b.WriteString(taskLabelStyle.Render(translationLabel))
		b.WriteString("\n")
		b.WriteString(f.Format(c.Entry.AnswerTranslation))
	}

	return b.String()
}

// renderCardLines turns the card list into view lines for scrolling. An
// empty list yields the no-results indicator.
func renderCardLines(cards []Card, f Formatter, width, cursor int) []viewLine {
	if len(cards) == 0 {
		return []viewLine{{content: noResultsStyle.Render(noResultsText), cardIndex: -1}}
	}

	lines := make([]viewLine, 0, len(cards))
	for i, card := range cards {
		lines = append(lines, viewLine{
			content:   card.View(f, width, i == cursor),
			cardIndex: i,
		})
	}
	return lines
}
