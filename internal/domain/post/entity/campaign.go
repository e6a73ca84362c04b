package entity

// Campaign is a client-side grouping of posts that share a topic.
// It is never persisted and is rebuilt from scratch on every fetch.
type Campaign struct {
	Topic     string `json:"topic"`
	MainImage string `json:"main_image"`
	Posts     []Post `json:"posts"`
}

// GroupByTopic groups posts into campaigns keyed by topic.
// Campaigns come out in first-seen topic order and posts keep their input order.
func GroupByTopic(posts []Post) []Campaign {
	campaigns := make([]Campaign, 0)
	index := make(map[string]int)

	for _, post := range posts {
		topic := post.TopicOrDefault()

		i, ok := index[topic]
		if !ok {
			campaigns = append(campaigns, Campaign{Topic: topic, Posts: []Post{}})
			i = len(campaigns) - 1
			index[topic] = i
		}

		c := &campaigns[i]
		c.Posts = append(c.Posts, post)
		if c.MainImage == "" && post.ImageURL != "" {
			c.MainImage = post.ImageURL
		}
	}

	return campaigns
}

// PostFor returns the first post of the campaign targeting the platform
func (c *Campaign) PostFor(platform Platform) (Post, bool) {
	for _, p := range c.Posts {
		if NormalizePlatform(string(p.Platform)) == platform {
			return p, true
		}
	}
	return Post{}, false
}

// HasPlatform reports whether the campaign has a draft for the platform
func (c *Campaign) HasPlatform(platform Platform) bool {
	_, ok := c.PostFor(platform)
	return ok
}

// ApprovedCount returns the number of approved posts in the campaign
func (c *Campaign) ApprovedCount() int {
	n := 0
	for _, p := range c.Posts {
		if p.Status == PostStatusApproved {
			n++
		}
	}
	return n
}

// FindCampaign returns the campaign with the exact topic
func FindCampaign(campaigns []Campaign, topic string) (Campaign, bool) {
	for _, c := range campaigns {
		if c.Topic == topic {
			return c, true
		}
	}
	return Campaign{}, false
}
