package catalog

import (
	"net/http"

	"enrollment-app/database"
	"enrollment-app/internal/domain/catalog"

	"github.com/gin-gonic/gin"
)

func ListCourses(c *gin.Context) {
	var courses []catalog.Course
	if err := database.DB.Where("published = ?", true).Order("title").Find(&courses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load courses"})
		return
	}

	var videos []catalog.VideoCourse
	if err := database.DB.Where("published = ?", true).Order("title").Find(&videos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load video courses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"courses":       courses,
		"video_courses": videos,
	})
}
