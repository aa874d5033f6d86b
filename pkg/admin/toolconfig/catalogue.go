package toolconfig

import "ai-contentgen-be/internal/entity"

type seed struct {
	name        string
	label       string
	cost        int
	hourly      int
	daily       int
	instruction string
}

var defaults = []seed{
	{"thumbnail", "Thumbnail Text", 1, 20, 100,
		"Write 3 to 5 thumbnail text options, each under 5 words, built on the strongest hook in the source. No misleading clickbait. End with one short recommendation."},
	{"seo-title", "SEO Titles", 1, 20, 100,
		"Write 3 search-optimised titles of 50 to 60 characters. Use the primary keyword naturally and give each title a different angle."},
	{"youtube", "YouTube Title & Description", 3, 10, 50,
		"Write a YouTube title under 60 characters and a full description: a strong opening paragraph, timestamps when the source has distinct segments, a call to action and 5 to 10 hashtags."},
	{"facebook", "Facebook Post", 2, 15, 80,
		"Write a Facebook post that opens with a scroll-stopping hook, tells the story in short paragraphs, ends with a discussion question and a call to action."},
	{"twitter", "Tweets", 1, 20, 100,
		"Write 3 tweet variations of at most 280 characters, each with 1 to 3 hashtags and a different angle."},
	{"instagram", "Instagram Caption", 2, 15, 80,
		"Write an Instagram caption with a hook in the first line, a short body, a call to action and a block of 10 to 20 relevant hashtags."},
	{"blog", "Blog Article", 3, 10, 40,
		"Write a blog article with a title, an introduction, headed sections, and a conclusion with a call to action. Keep paragraphs short."},
	{"short-desc", "Short Description", 1, 20, 100,
		"Write a description of 2 to 3 sentences that states the core value of the content."},
	{"long-desc", "Long Description", 2, 15, 80,
		"Write a detailed description of 3 to 5 paragraphs that covers the main points, who the content is for and what they will learn."},
	{"ad-copy", "Ad Copy", 2, 15, 80,
		"Write 3 ad copy variations, each with a headline, primary text and a call to action. Vary the emotional angle."},
	{"hooks", "Video Hooks", 1, 20, 100,
		"Write 5 opening hooks for the first 3 seconds of a video, each one sentence long."},
	{"more-same", "More Like This", 2, 15, 80,
		"Suggest 5 follow-up content ideas on the same topic with a title and a one-line summary each."},
	{"more-different", "Fresh Angles", 2, 15, 80,
		"Suggest 5 content ideas that approach the topic from an unexpected angle, with a title and a one-line summary each."},
	{"improvements", "Improvement Tips", 2, 10, 50,
		"Review the content and list concrete improvements for structure, pacing, clarity and engagement, most important first."},
	{"competitor", "Competitor Angle", 3, 10, 40,
		"Describe how similar creators usually cover this topic, where this content stands out and which gaps it could fill next."},
}

// DefaultCatalogue returns the tools a fresh install starts with.
func DefaultCatalogue() []*entity.ToolConfig {
	tools := make([]*entity.ToolConfig, 0, len(defaults))
	for i, d := range defaults {
		tools = append(tools, &entity.ToolConfig{
			ToolName:     d.name,
			Label:        d.label,
			CreditCost:   d.cost,
			HourlyLimit:  d.hourly,
			DailyLimit:   d.daily,
			IsEnabled:    true,
			Instruction:  d.instruction,
			DisplayOrder: i + 1,
		})
	}
	return tools
}
