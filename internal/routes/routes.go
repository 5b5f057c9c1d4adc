package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pollboard/pollboard/internal/handlers"
)

func RegisterPublicRoutes(rg *gin.RouterGroup, handler *handlers.PollHandler) {
	{
		rg.GET("/polls", handler.ListPolls)
		rg.GET("/polls/:id", handler.GetPoll)
		rg.GET("/polls/:id/results", handler.GetResults)

		rg.GET("/me/responses", handler.MyResponses)

		rg.POST("/polls/:id/vote", handler.SubmitVote)
	}
}

func RegisterAdminRoutes(rg *gin.RouterGroup, handler *handlers.AdminHandler) {
	{
		rg.POST("/polls", handler.CreatePoll)
		rg.PUT("/polls/:id", handler.UpdatePoll)
		rg.DELETE("/polls/:id", handler.DeletePoll)

		rg.PUT("/polls/:id/attachment", handler.AttachFile)
		rg.DELETE("/polls/:id/attachment", handler.RemoveAttachment)

		rg.GET("/logs", handler.AuditLog)

		rg.POST("/export", handler.Export)
	}
}
