package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"newsdesk/internal/model"
)

// PrimaryUserEmail is the demo user that gets a seeded reading history and
// is the default target of the recommendation workflow.
const PrimaryUserEmail = "michalkucirka@gmail.com"

const historySize = 10

// MockUsers returns the demo user profiles.
func MockUsers() []model.User {
	return []model.User{
		{
			Email: PrimaryUserEmail,
			Preferences: "I'm interested in technology news, especially AI and machine learning advancements. " +
				"I enjoy reading about financial markets and investment strategies. " +
				"Health and fitness articles are also interesting to me, particularly nutrition science. " +
				"I prefer concise articles with data visualizations when available.",
			Age:      32,
			Gender:   "male",
			Location: "Prague",
		},
		{
			Email: "jan.novak@example.com",
			Preferences: "I follow political news both domestic and international with great interest. " +
				"Environmental sustainability topics are important to me. " +
				"I enjoy in-depth analyses rather than brief news. " +
				"Scientific breakthroughs in renewable energy catch my attention regularly.",
			Age:      45,
			Gender:   "male",
			Location: "Brno",
		},
		{
			Email: "anna.svobodova@example.com",
			Preferences: "I'm passionate about culinary arts and food culture articles. " +
				"Travel destinations and experiences are my favorite reads. " +
				"I also enjoy fashion news and sustainable clothing topics. " +
				"Local Czech cultural events and arts coverage is something I look for daily.",
			Age:      28,
			Gender:   "female",
			Location: "Ostrava",
		},
		{
			Email: "martin.dvorak@example.com",
			Preferences: "Sports news is my primary interest, particularly football and hockey. " +
				"I follow automotive industry developments and new car reviews. " +
				"Weekend leisure activity suggestions are useful for my family outings. " +
				"I appreciate articles with practical DIY advice for home improvement.",
			Age:      37,
			Gender:   "male",
			Location: "Plzeň",
		},
		{
			Email: "petra.novotna@example.com",
			Preferences: "Education trends and learning methodologies interest me professionally. " +
				"Parenting advice and child development research are topics I follow closely. " +
				"Mental health awareness and psychology studies help with my work. " +
				"Book reviews and literary discussions are my weekend reading pleasure.",
			Age:      41,
			Gender:   "female",
			Location: "Liberec",
		},
	}
}

// SeedUsers inserts the demo users and gives the primary user a reading
// history of random articles. Existing users and history rows are left
// alone, so re-seeding is harmless.
func (r *Runner) SeedUsers(ctx context.Context) error {
	var primaryID int64
	for _, u := range MockUsers() {
		id, already, err := r.Store.CreateUser(ctx, u)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		if u.Email == PrimaryUserEmail {
			primaryID = id
		}
		slog.Info("pipeline: seeded user", "email", u.Email, "id", id, "already", already)
	}

	ids, err := r.Store.RandomArticleIDs(ctx, historySize)
	if err != nil {
		return fmt.Errorf("seed history: %w", err)
	}
	if len(ids) == 0 {
		slog.Warn("pipeline: no articles for reading history, run fetch and process first")
		return nil
	}
	if len(ids) < historySize {
		slog.Warn("pipeline: fewer articles than wanted for history", "got", len(ids), "want", historySize)
	}
	for _, articleID := range ids {
		if err := r.Store.AddReading(ctx, primaryID, articleID); err != nil {
			return fmt.Errorf("seed history: article %d: %w", articleID, err)
		}
	}
	slog.Info("pipeline: seeded reading history", "email", PrimaryUserEmail, "articles", len(ids))
	return nil
}
