package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/brensch/campwatch/internal/search"
	"github.com/bwmarrin/discordgo"
)

// maxEmbedSites caps how many campsites get their own embed field so a busy
// campground can't blow Discord's embed size limits.
const maxEmbedSites = 5

// Discord posts availability results to a single channel. The session is
// REST-only; no gateway connection is opened.
type Discord struct {
	s         *discordgo.Session
	channelID string
}

func NewDiscord(token, channelID string) (*Discord, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return &Discord{s: s, channelID: channelID}, nil
}

// NotifyAvailability implements search.Notifier.
func (d *Discord) NotifyAvailability(_ context.Context, rep search.ParkReport, w search.Window) error {
	embed := buildAvailabilityEmbed(rep, w)
	_, err := d.s.ChannelMessageSendEmbed(d.channelID, embed)
	if err != nil {
		return fmt.Errorf("send availability embed: %w", err)
	}
	return nil
}

// buildAvailabilityEmbed creates a single embed with one field per campsite.
func buildAvailabilityEmbed(rep search.ParkReport, w search.Window) *discordgo.MessageEmbed {
	var description strings.Builder
	description.WriteString(rep.Name + "\n")
	description.WriteString(w.Start.Format("2006-01-02") + " to " + w.End.Format("2006-01-02") + "\n")
	fmt.Fprintf(&description, "%d site(s) available out of %d site(s).",
		rep.Result.Available, rep.Result.Maximum)

	sites := rep.Result.Sites
	if len(sites) > maxEmbedSites {
		sites = sites[:maxEmbedSites]
		fmt.Fprintf(&description, "\nShowing the first %d campsites.", maxEmbedSites)
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(sites))
	for _, site := range sites {
		var value strings.Builder
		for i, run := range site.Options {
			if i > 0 {
				value.WriteString("\n")
			}
			fmt.Fprintf(&value, "%s to %s (%d nights)",
				run[0].Format("2006-01-02"), run[len(run)-1].Format("2006-01-02"), len(run))
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Site " + site.SiteID,
			Value:  value.String(),
			Inline: true,
		})
	}

	return &discordgo.MessageEmbed{
		Title:       "Campsites available at " + rep.Name,
		URL:         rep.URL,
		Description: description.String(),
		Fields:      fields,
		Color:       0x2e8b57,
	}
}
