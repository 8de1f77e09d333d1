// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"ripple/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seeder populates the database with fake but realistic-looking data.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run seeds users, posts, likes, and comments.
func (s *Seeder) Run(opts Options) error {
	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	users, err := s.createUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	posts, err := s.createPosts(users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("created %d posts", len(posts))

	likes, err := s.createLikes(users, posts)
	if err != nil {
		return fmt.Errorf("failed to create likes: %w", err)
	}
	log.Printf("created %d likes", likes)

	comments, err := s.createComments(users, posts)
	if err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}
	log.Printf("created %d comments", comments)

	return nil
}

// ClearAll removes all seeded rows. Deletion order respects foreign keys.
func (s *Seeder) ClearAll() error {
	for _, table := range []string{"likes", "comments", "posts", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) createUsers(n int) ([]*models.User, error) {
	// All seeded accounts share one password so the hash is computed once.
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		username := strings.ToLower(gofakeit.Username())
		if seen[username] || len(username) < 3 {
			username = fmt.Sprintf("%s%d", username, s.rng.Intn(10000))
		}
		seen[username] = true

		user := &models.User{
			Username: username,
			Email:    fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
			Password: string(hash),
		}
		if err := s.db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) createPosts(users []*models.User, n int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.rng.Intn(len(users))]

		post := &models.Post{
			UserID:   author.ID,
			Username: author.Username,
			Text:     gofakeit.Sentence(4 + s.rng.Intn(12)),
		}
		// Roughly a third of posts carry an image.
		if s.rng.Intn(3) == 0 {
			post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
		}
		// Spread creation times over the past 30 days so the feed has depth.
		post.CreatedAt = time.Now().
			Add(-time.Duration(s.rng.Intn(30*24)) * time.Hour).
			Add(-time.Duration(s.rng.Intn(60)) * time.Minute)

		if err := s.db.Create(post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) createLikes(users []*models.User, posts []*models.Post) (int, error) {
	count := 0
	for _, post := range posts {
		for _, user := range users {
			if s.rng.Intn(5) != 0 {
				continue
			}
			like := &models.Like{UserID: user.ID, PostID: post.ID}
			if err := s.db.Create(like).Error; err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

func (s *Seeder) createComments(users []*models.User, posts []*models.Post) (int, error) {
	count := 0
	for _, post := range posts {
		for i := 0; i < s.rng.Intn(4); i++ {
			author := users[s.rng.Intn(len(users))]
			comment := &models.Comment{
				PostID:   post.ID,
				UserID:   author.ID,
				Username: author.Username,
				Text:     gofakeit.Sentence(3 + s.rng.Intn(10)),
			}
			if err := s.db.Create(comment).Error; err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}
