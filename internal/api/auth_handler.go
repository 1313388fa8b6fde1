package api

import (
	"alcyxob/trainer-app/internal/domain"
	"alcyxob/trainer-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8,max=72"`
	BusinessName string `json:"businessName"`
	Phone        string `json:"phone"`
}

// TrainerResponse excludes sensitive info like password hash
type TrainerResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	BusinessName string    `json:"businessName,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Currency     string    `json:"currency"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Trainer   TrainerResponse `json:"trainer"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new trainer
// @Description Creates a new trainer account.
// @Tags Auth
// @Accept json
// @Produce json
// @Param trainer body RegisterRequest true "Registration details"
// @Success 201 {object} TrainerResponse "Trainer created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "Conflict (email already exists)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	trainer, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		BusinessName: req.BusinessName,
		Phone:        req.Phone,
	})
	if err != nil {
		respondError(c, err, "register")
		return
	}

	c.JSON(http.StatusCreated, MapTrainerToResponse(trainer))
}

// Login godoc
// @Summary Log in a trainer
// @Description Authenticates a trainer, returns a JWT and sets it as the session cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse "Login successful"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	token, trainer, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "log in")
		return
	}

	ttl := h.authService.TokenTTL()
	setSessionCookie(c, token, int(ttl.Seconds()))
	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(ttl).UTC(),
		Trainer:   MapTrainerToResponse(trainer),
	})
}

// Logout godoc
// @Summary Log out
// @Description Clears the session cookie. Bearer tokens stay valid until they expire.
// @Tags Auth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	setSessionCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

func setSessionCookie(c *gin.Context, token string, maxAge int) {
	secure := c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", secure, true)
}

// MapTrainerToResponse converts a domain Trainer to a TrainerResponse DTO.
// Crucially excludes PasswordHash.
func MapTrainerToResponse(trainer *domain.Trainer) TrainerResponse {
	if trainer == nil {
		return TrainerResponse{}
	}
	return TrainerResponse{
		ID:           trainer.ID,
		Name:         trainer.Name,
		Email:        trainer.Email,
		Phone:        trainer.Phone,
		BusinessName: trainer.BusinessName,
		Bio:          trainer.Bio,
		Currency:     trainer.Currency,
		CreatedAt:    trainer.CreatedAt,
	}
}

// MapProfileToResponse adds the resolved avatar link.
func MapProfileToResponse(profile *service.TrainerProfile) TrainerResponse {
	resp := MapTrainerToResponse(&profile.Trainer)
	resp.AvatarURL = profile.AvatarURL
	return resp
}
