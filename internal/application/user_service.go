package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bloghive/bloghive-api/internal/domain/entity"
	"github.com/bloghive/bloghive-api/internal/domain/policy"
	"github.com/bloghive/bloghive-api/internal/domain/repository"
	"github.com/bloghive/bloghive-api/pkg/helpers"
)

// UserService covers profiles, the follow graph and user search.
type UserService struct {
	Users        repository.UserRepository
	GCS          *storage.Client
	GCSBucket    string
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
}

// Profile is a user plus relationship context for the viewer.
type Profile struct {
	User        *entity.User
	IsFollowing bool
	Followers   int
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// PublicProfile resolves a user together with whether the viewer follows them.
func (s *UserService) PublicProfile(ctx context.Context, viewerID, targetID string) (*Profile, error) {
	u, err := s.Users.GetByID(ctx, targetID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	following := false
	if viewerID != "" && viewerID != targetID {
		following, err = s.Users.IsFollowing(ctx, viewerID, targetID)
		if err != nil {
			return nil, err
		}
	}
	followers, err := s.Users.Followers(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: u, IsFollowing: following, Followers: len(followers)}, nil
}

type UpdateProfileInput struct {
	Bio       *string
	AvatarURL string
}

func (s *UserService) UpdateProfile(ctx context.Context, actor policy.Actor, in UpdateProfileInput) (*entity.User, error) {
	if d := policy.NotBlocked()(actor); !d.Allowed {
		return nil, Forbidden(d.Reason)
	}
	u, err := s.Users.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.AvatarURL != "" {
		u.AvatarURL = in.AvatarURL
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	_ = s.indexUser(ctx, u)
	return u, nil
}

// UploadAvatar stores the image in GCS and records its public URL.
func (s *UserService) UploadAvatar(ctx context.Context, actor policy.Actor, r io.Reader, filename, contentType string) (string, error) {
	if d := policy.NotBlocked()(actor); !d.Allowed {
		return "", Forbidden(d.Reason)
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	u, err := s.Users.GetByID(ctx, actor.ID)
	if err != nil {
		return "", ErrUserNotFound
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", u.ID, uuid.NewString()+ext))
	url, err := helpers.UploadImageToGCS(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	u.AvatarURL = url
	if err := s.Users.Update(ctx, u); err != nil {
		return "", err
	}
	_ = s.indexUser(ctx, u)
	return url, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, actor policy.Actor, password string) error {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, actor.ID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// DeleteAccount removes the actor's account; owned blogs go with it.
func (s *UserService) DeleteAccount(ctx context.Context, actor policy.Actor) error {
	if err := s.Users.Delete(ctx, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.deleteFromIndex(ctx, actor.ID)
	return nil
}

// ToggleFollow flips the actor's membership in the target's follower set.
// Following yourself is never allowed, and toggling twice restores the
// original state.
func (s *UserService) ToggleFollow(ctx context.Context, actor policy.Actor, targetID string) (bool, error) {
	if d := policy.All(policy.NotBlocked(), policy.NotSelf(targetID))(actor); !d.Allowed {
		if actor.ID == targetID {
			return false, ErrSelfAction
		}
		return false, Forbidden(d.Reason)
	}
	following, err := s.Users.ToggleFollow(ctx, actor.ID, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	return following, nil
}

func (s *UserService) Followers(ctx context.Context, userID string) ([]entity.User, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return nil, ErrUserNotFound
	}
	return s.Users.Followers(ctx, userID)
}

// Search finds users by case-insensitive username substring. Elasticsearch
// serves the query when configured; otherwise the database matches directly.
func (s *UserService) Search(ctx context.Context, q string, limit int) ([]entity.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	if s.ES != nil && s.ESUsersIndex != "" {
		users, err := s.searchES(ctx, q, limit)
		if err == nil {
			return users, nil
		}
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("es search failed, falling back to database")
		}
	}
	return s.Users.SearchByUsername(ctx, q, limit)
}

func (s *UserService) searchES(ctx context.Context, q string, limit int) ([]entity.User, error) {
	query := map[string]any{
		"query": map[string]any{
			"wildcard": map[string]any{
				"username": map[string]any{
					"value":            "*" + strings.ToLower(q) + "*",
					"case_insensitive": true,
				},
			},
		},
		"size": limit,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, errors.New("es search: " + res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string `json:"_id"`
				Source struct {
					Username  string `json:"username"`
					Email     string `json:"email"`
					AvatarURL string `json:"avatar_url"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.User, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, entity.User{
			ID:        h.ID,
			Username:  h.Source.Username,
			Email:     h.Source.Email,
			AvatarURL: h.Source.AvatarURL,
		})
	}
	return out, nil
}

// IndexUser pushes the user document into the search index.
func (s *UserService) IndexUser(ctx context.Context, u *entity.User) {
	_ = s.indexUser(ctx, u)
}

func (s *UserService) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"avatar_url": u.AvatarURL,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}

func (s *UserService) deleteFromIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESUsersIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if res, err := req.Do(c, s.ES); err == nil {
		_ = res.Body.Close()
	}
}
