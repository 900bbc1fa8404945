package models

import "time"

// Generation methods.
const (
	MethodVertexAI  = "vertex-ai"
	MethodGeminiAPI = "gemini-api"
)

// GenerationRecord is one stored studio result. Immutable once written.
type GenerationRecord struct {
	ID              string    `json:"id" bson:"_id" firestore:"-"`
	UserID          string    `json:"userId" bson:"userId" firestore:"userId"`
	ModelImageURL   string    `json:"modelImageUrl" bson:"modelImageUrl" firestore:"modelImageUrl"`
	GarmentImageURL string    `json:"garmentImageUrl" bson:"garmentImageUrl" firestore:"garmentImageUrl"`
	OutputImageURL  string    `json:"outputImageUrl" bson:"outputImageUrl" firestore:"outputImageUrl"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	Method          string    `json:"method" bson:"method" firestore:"method"`
}

// GenerateRequest is the only accepted shape for a studio generation call.
type GenerateRequest struct {
	ModelImageURL   string `json:"modelImageUrl" binding:"required"`
	GarmentImageURL string `json:"garmentImageUrl" binding:"required"`
	Method          string `json:"method,omitempty"`
}

// GenerationResult is returned after a successful generation.
type GenerationResult struct {
	Record               *GenerationRecord `json:"record"`
	RemainingGenerations int64             `json:"remainingGenerations"`
	TotalGenerations     int64             `json:"totalGenerations"`
	CreditApplied        bool              `json:"creditApplied"`
	Warning              string            `json:"warning,omitempty"`
}

// PredefinedModel is an entry of the built-in model photo library.
type PredefinedModel struct {
	ID       string   `json:"id" bson:"_id" firestore:"-"`
	Gender   string   `json:"gender" bson:"gender" firestore:"gender"`
	Name     string   `json:"name" bson:"name" firestore:"name"`
	Tags     []string `json:"tags" bson:"tags" firestore:"tags"`
	ImageURL string   `json:"imageUrl" bson:"imageUrl" firestore:"imageUrl"`
}

// UploadResult is returned after an image upload.
type UploadResult struct {
	URL         string `json:"url"`
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}
