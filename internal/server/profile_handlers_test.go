package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"devconnect/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// withLocals simulates the auth and profile middleware for handler tests.
func withLocals(userID, profileID primitive.ObjectID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		c.Locals("profileID", profileID)
		return c.Next()
	}
}

func TestUpsertMyProfile(t *testing.T) {
	userID := primitive.NewObjectID()
	user := &models.User{ID: userID, Name: "Test User", Email: "test@example.com"}

	tests := []struct {
		name           string
		body           map[string]any
		expectedStatus int
		checkSaved     func(*testing.T, *models.Profile)
	}{
		{
			name: "Success With Skill Array",
			body: map[string]any{
				"username": "gopher",
				"birthday": "1990-04-01",
				"skills":   []string{"Go", "MongoDB"},
			},
			expectedStatus: http.StatusOK,
			checkSaved: func(t *testing.T, p *models.Profile) {
				assert.Equal(t, []string{"Go", "MongoDB"}, p.Skills)
			},
		},
		{
			name: "Skills As Comma String",
			body: map[string]any{
				"username": "gopher",
				"birthday": "1990-04-01",
				"skills":   "Go, MongoDB , Redis",
			},
			expectedStatus: http.StatusOK,
			checkSaved: func(t *testing.T, p *models.Profile) {
				assert.Equal(t, []string{"Go", "MongoDB", "Redis"}, p.Skills)
			},
		},
		{
			name: "Website Normalized To HTTPS",
			body: map[string]any{
				"username": "gopher",
				"birthday": "1990-04-01",
				"website":  "www.example.com/portfolio",
			},
			expectedStatus: http.StatusOK,
			checkSaved: func(t *testing.T, p *models.Profile) {
				assert.Equal(t, "https://example.com/portfolio", p.Website)
			},
		},
		{
			name: "Missing Username",
			body: map[string]any{
				"birthday": "1990-04-01",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Missing Birthday",
			body: map[string]any{
				"username": "gopher",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Invalid Website URL",
			body: map[string]any{
				"username": "gopher",
				"birthday": "1990-04-01",
				"website":  "ftp://example.com",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			mockUsers.On("GetByID", mock.Anything, userID).Return(user, nil).Maybe()

			var saved *models.Profile
			mockProfiles := new(MockProfileRepository)
			mockProfiles.On("Upsert", mock.Anything, mock.Anything).
				Run(func(args mock.Arguments) {
					saved = args.Get(1).(*models.Profile)
				}).
				Return(&models.Profile{ID: primitive.NewObjectID(), UserID: userID}, nil).
				Maybe()

			s := newTestServer()
			s.userRepo = mockUsers
			s.profileRepo = mockProfiles

			app := fiber.New()
			app.Post("/profiles", withLocals(userID, primitive.NilObjectID), s.UpsertMyProfile)

			resp, err := app.Test(jsonRequest(http.MethodPost, "/profiles", tt.body))
			assert.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkSaved != nil {
				assert.NotNil(t, saved)
				assert.Equal(t, userID, saved.UserID)
				tt.checkSaved(t, saved)
			}
		})
	}
}

func TestGetProfileByUserID(t *testing.T) {
	userID := primitive.NewObjectID()
	profile := &models.Profile{ID: primitive.NewObjectID(), UserID: userID, Username: "gopher"}

	mockUsers := new(MockUserRepository)
	mockUsers.On("GetByID", mock.Anything, userID).
		Return(&models.User{ID: userID, Name: "Test User", Email: "t@example.com"}, nil).Maybe()

	mockProfiles := new(MockProfileRepository)
	mockProfiles.On("GetByUserID", mock.Anything, userID).Return(profile, nil)
	mockProfiles.On("GetByUserID", mock.Anything, mock.Anything).Return(nil, nil)

	s := newTestServer()
	s.userRepo = mockUsers
	s.profileRepo = mockProfiles

	app := fiber.New()
	app.Get("/profiles/user/:user_id", s.GetProfileByUserID)

	tests := []struct {
		name           string
		target         string
		expectedStatus int
	}{
		{"Found", "/profiles/user/" + userID.Hex(), http.StatusOK},
		{"Not Found", "/profiles/user/" + primitive.NewObjectID().Hex(), http.StatusNotFound},
		{"Malformed ID", "/profiles/user/not-hex", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				body := decodeBody(t, resp)
				assert.Equal(t, "gopher", body["username"])
				// Linked user fields are embedded at read time.
				assert.NotNil(t, body["user"])
			}
		})
	}
}

func TestGetProfileByUsername(t *testing.T) {
	profile := &models.Profile{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), Username: "gopher"}

	mockUsers := new(MockUserRepository)
	mockUsers.On("GetByID", mock.Anything, mock.Anything).Return(nil, nil).Maybe()

	mockProfiles := new(MockProfileRepository)
	mockProfiles.On("GetByUsername", mock.Anything, "gopher").Return(profile, nil)
	mockProfiles.On("GetByUsername", mock.Anything, "missing").Return(nil, nil)

	s := newTestServer()
	s.userRepo = mockUsers
	s.profileRepo = mockProfiles

	app := fiber.New()
	app.Get("/profiles/name/:username", s.GetProfileByUsername)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/profiles/name/gopher", nil))
	assert.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/profiles/name/missing", nil))
	assert.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteMyAccount(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	assert.NoError(t, err)

	userID := primitive.NewObjectID()
	profileID := primitive.NewObjectID()
	user := &models.User{ID: userID, Email: "t@example.com", Password: string(hash)}

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
		expectCascade  bool
	}{
		{
			name:           "Success",
			body:           map[string]string{"password": "password123"},
			expectedStatus: http.StatusOK,
			expectCascade:  true,
		},
		{
			name:           "Wrong Password",
			body:           map[string]string{"password": "not-it"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing Password",
			body:           map[string]string{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := new(MockUserRepository)
			mockUsers.On("GetByID", mock.Anything, userID).Return(user, nil).Maybe()
			mockUsers.On("Delete", mock.Anything, userID).Return(nil).Maybe()

			mockProfiles := new(MockProfileRepository)
			mockProfiles.On("DeleteByUserID", mock.Anything, userID).Return(nil).Maybe()

			mockPosts := new(MockPostRepository)
			mockPosts.On("DeleteByProfileID", mock.Anything, profileID).Return(nil).Maybe()

			s := newTestServer()
			s.userRepo = mockUsers
			s.profileRepo = mockProfiles
			s.postRepo = mockPosts

			app := fiber.New()
			app.Delete("/profiles", withLocals(userID, profileID), s.DeleteMyAccount)

			resp, err := app.Test(jsonRequest(http.MethodDelete, "/profiles", tt.body))
			assert.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectCascade {
				mockUsers.AssertCalled(t, "Delete", mock.Anything, userID)
				mockProfiles.AssertCalled(t, "DeleteByUserID", mock.Anything, userID)
				mockPosts.AssertCalled(t, "DeleteByProfileID", mock.Anything, profileID)
			} else {
				mockUsers.AssertNotCalled(t, "Delete", mock.Anything, userID)
			}
		})
	}
}

func TestDeleteMyAccountCascadeLookups(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	assert.NoError(t, err)

	userID := primitive.NewObjectID()
	profileID := primitive.NewObjectID()
	postID := primitive.NewObjectID()
	user := &models.User{ID: userID, Email: "t@example.com", Password: string(hash)}

	mockUsers := new(MockUserRepository)
	mockUsers.On("GetByID", mock.Anything, userID).Return(user, nil)
	mockUsers.On("Delete", mock.Anything, userID).Return(nil)

	// Post-delete store state: the profile and its posts are gone.
	mockProfiles := new(MockProfileRepository)
	mockProfiles.On("DeleteByUserID", mock.Anything, userID).Return(nil)
	mockProfiles.On("GetByUserID", mock.Anything, userID).Return(nil, nil)

	mockPosts := new(MockPostRepository)
	mockPosts.On("DeleteByProfileID", mock.Anything, profileID).Return(nil)
	mockPosts.On("GetByID", mock.Anything, postID).Return(nil, nil)

	s := newTestServer()
	s.userRepo = mockUsers
	s.profileRepo = mockProfiles
	s.postRepo = mockPosts

	app := fiber.New()
	app.Delete("/profiles", withLocals(userID, profileID), s.DeleteMyAccount)
	app.Get("/profiles/user/:user_id", s.GetProfileByUserID)
	app.Get("/posts/:id", s.GetPost)

	resp, err := app.Test(jsonRequest(http.MethodDelete, "/profiles",
		map[string]string{"password": "password123"}))
	assert.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockPosts.AssertCalled(t, "DeleteByProfileID", mock.Anything, profileID)
	mockProfiles.AssertCalled(t, "DeleteByUserID", mock.Anything, userID)
	mockUsers.AssertCalled(t, "Delete", mock.Anything, userID)

	// The deleted user's profile and posts are unreachable afterwards.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/profiles/user/"+userID.Hex(), nil))
	assert.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/posts/"+postID.Hex(), nil))
	assert.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddExperience(t *testing.T) {
	userID := primitive.NewObjectID()
	profileID := primitive.NewObjectID()

	mockUsers := new(MockUserRepository)
	mockUsers.On("GetByID", mock.Anything, userID).Return(nil, nil).Maybe()

	var added models.Experience
	mockProfiles := new(MockProfileRepository)
	mockProfiles.On("AddExperience", mock.Anything, userID, mock.Anything).
		Run(func(args mock.Arguments) {
			added = args.Get(2).(models.Experience)
		}).
		Return(&models.Profile{ID: profileID, UserID: userID}, nil)

	s := newTestServer()
	s.userRepo = mockUsers
	s.profileRepo = mockProfiles

	app := fiber.New()
	app.Put("/profiles/experience", withLocals(userID, profileID), s.AddExperience)

	resp, err := app.Test(jsonRequest(http.MethodPut, "/profiles/experience",
		map[string]string{"title": "Backend Developer", "location": "Lisbon"}))
	assert.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Backend Developer", added.Title)
	assert.Equal(t, "Lisbon", added.Location)
	assert.False(t, added.ID.IsZero())

	// title is required
	resp, err = app.Test(jsonRequest(http.MethodPut, "/profiles/experience",
		map[string]string{"location": "Lisbon"}))
	assert.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetExperience(t *testing.T) {
	userID := primitive.NewObjectID()
	profileID := primitive.NewObjectID()
	expID := primitive.NewObjectID()

	profile := &models.Profile{
		ID:     profileID,
		UserID: userID,
		Experience: []models.Experience{
			{ID: expID, Title: "Tech Lead", Location: "Berlin"},
		},
	}

	mockProfiles := new(MockProfileRepository)
	mockProfiles.On("GetByID", mock.Anything, profileID).Return(profile, nil)

	s := newTestServer()
	s.profileRepo = mockProfiles

	app := fiber.New()
	app.Get("/profiles/experience/:exp_id", withLocals(userID, profileID), s.GetExperience)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/profiles/experience/"+expID.Hex(), nil))
	assert.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Tech Lead", body["title"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet,
		"/profiles/experience/"+primitive.NewObjectID().Hex(), nil))
	assert.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteExperience(t *testing.T) {
	userID := primitive.NewObjectID()
	profileID := primitive.NewObjectID()
	expID := primitive.NewObjectID()

	mockUsers := new(MockUserRepository)
	mockUsers.On("GetByID", mock.Anything, userID).Return(nil, nil).Maybe()

	mockProfiles := new(MockProfileRepository)
	mockProfiles.On("RemoveExperience", mock.Anything, userID, expID).
		Return(&models.Profile{ID: profileID, UserID: userID, Experience: []models.Experience{}}, nil)

	s := newTestServer()
	s.userRepo = mockUsers
	s.profileRepo = mockProfiles

	app := fiber.New()
	app.Delete("/profiles/experience/:exp_id", withLocals(userID, profileID), s.DeleteExperience)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/profiles/experience/"+expID.Hex(), nil))
	assert.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockProfiles.AssertCalled(t, "RemoveExperience", mock.Anything, userID, expID)
}
