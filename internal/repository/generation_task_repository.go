package repository

import (
	"github.com/melodia/melodia-backend/internal/models"
	"gorm.io/gorm"
)

type GenerationTaskRepository struct {
	db *gorm.DB
}

func NewGenerationTaskRepository(db *gorm.DB) *GenerationTaskRepository {
	return &GenerationTaskRepository{
		db: db,
	}
}

func (r *GenerationTaskRepository) Create(task *models.GenerationTask) error {
	return r.db.Create(task).Error
}

func (r *GenerationTaskRepository) GetByTaskID(taskID string) (*models.GenerationTask, error) {
	var task models.GenerationTask
	err := r.db.Where("task_id = ?", taskID).First(&task).Error
	return &task, err
}

func (r *GenerationTaskRepository) GetByShareSlug(slug string) (*models.GenerationTask, error) {
	var task models.GenerationTask
	err := r.db.Where("share_slug = ?", slug).First(&task).Error
	return &task, err
}

func (r *GenerationTaskRepository) Update(task *models.GenerationTask) error {
	return r.db.Save(task).Error
}

func (r *GenerationTaskRepository) GetUserTasks(userID uint, limit int) ([]models.GenerationTask, error) {
	var tasks []models.GenerationTask
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}
