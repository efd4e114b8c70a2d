package news

import "soulthread/internal/domain"

// CuratedSourceName labels items pulled from the bundled dataset.
const CuratedSourceName = "Curated Trends"

// curatedTrends is the static fallback dataset used when live aggregation
// yields nothing. Ordered by editorial priority.
var curatedTrends = []domain.NewsItem{
	{
		Title:   "AI Breakthrough in Natural Language Processing",
		Summary: "Researchers have developed a new AI model that can understand context better than previous systems, potentially revolutionizing how we interact with technology.",
	},
	{
		Title:   "Sustainable Energy Solutions Gain Momentum",
		Summary: "New solar panel technology shows 40% efficiency improvement, making renewable energy more accessible for residential and commercial use.",
	},
	{
		Title:   "Remote Work Tools Evolution",
		Summary: "Latest collaboration platforms integrate AI-powered features for better team productivity and seamless virtual meetings.",
	},
	{
		Title:   "Quantum Computing Reaches Commercial Viability",
		Summary: "Cloud providers now offer quantum processing units to enterprise customers, opening optimization and simulation workloads to mainstream development teams.",
	},
	{
		Title:   "Open Source Funding Models Mature",
		Summary: "Major foundations report record corporate sponsorship for critical infrastructure projects, easing the maintainer burnout crisis highlighted in recent surveys.",
	},
	{
		Title:   "Edge Computing Reshapes Data Pipelines",
		Summary: "Processing moves closer to devices as 5G rollouts complete, cutting latency for real-time analytics and reducing cloud egress costs for data-heavy applications.",
	},
	{
		Title:   "Developer Productivity Tools See Record Investment",
		Summary: "Venture funding flows into code assistants, observability platforms, and internal developer portals as companies compete on engineering velocity.",
	},
	{
		Title:   "Cybersecurity Spending Hits All-Time High",
		Summary: "Enterprises double down on zero-trust architectures and supply chain auditing after a year of high-profile breaches across critical industries.",
	},
	{
		Title:   "Biotech Startups Apply Machine Learning to Drug Discovery",
		Summary: "Protein-folding models shorten candidate screening from years to months, with several AI-designed compounds now entering clinical trials.",
	},
	{
		Title:   "The Creator Economy Turns to Niche Newsletters",
		Summary: "Independent writers find sustainable income in focused, high-trust email audiences as social platform reach continues to decline.",
	},
}

// Curated returns up to n items from the static dataset, labeled with the
// curated source name. The mock path pulls a larger slice (8) than the
// real-time-empty fallback (5); callers choose the size.
func Curated(n int) []domain.NewsItem {
	if n <= 0 || n > len(curatedTrends) {
		n = len(curatedTrends)
	}
	items := make([]domain.NewsItem, n)
	copy(items, curatedTrends[:n])
	for i := range items {
		items[i].Source = CuratedSourceName
	}
	return items
}
