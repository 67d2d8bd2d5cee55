package server

import (
	"net/http"

	"tasktracker/internal/domain/models"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (api *TaskAPI) createTask(ctx *gin.Context) {
	user := currentUser(ctx)

	var req models.CreateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	if err := req.Validate(); err != nil {
		abortWithError(ctx, err, "")
		return
	}

	task := req.NewTask(user.ID)
	if err := api.tasks.CreateTask(ctx.Request.Context(), &task); err != nil {
		abortWithError(ctx, err, "ошибка создания задачи")
		return
	}

	log.WithFields(log.Fields{"user_id": user.ID, "task_id": task.ID}).Debug("Задача создана")
	ctx.JSON(http.StatusCreated, gin.H{
		"message": "задача успешно создана",
		"task":    task,
	})
}

// listTasks runs filter and writes the result as {message, tasks}.
func (api *TaskAPI) listTasks(ctx *gin.Context, filter models.TaskFilter, message string) {
	tasks, err := api.tasks.FindTasks(ctx.Request.Context(), filter)
	if err != nil {
		abortWithError(ctx, err, "ошибка получения задач")
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
		"tasks":   tasks,
	})
}

func (api *TaskAPI) getAllTasks(ctx *gin.Context) {
	api.listTasks(ctx, models.AllTasks(currentUser(ctx).ID), "все задачи")
}

func (api *TaskAPI) getTasksByDate(ctx *gin.Context) {
	day, err := models.ParseDay(ctx.Param("date"), api.loc)
	if err != nil {
		abortWithError(ctx, err, "")
		return
	}
	api.listTasks(ctx, models.TasksCreatedOn(currentUser(ctx).ID, day, api.loc), "задачи за дату")
}

func (api *TaskAPI) getTodayTasks(ctx *gin.Context) {
	api.listTasks(ctx, models.TasksCreatedToday(currentUser(ctx).ID, api.now(), api.loc), "задачи за сегодня")
}

func (api *TaskAPI) getTasksByCategory(ctx *gin.Context) {
	api.listTasks(ctx, models.TasksInCategory(currentUser(ctx).ID, ctx.Param("category")), "задачи категории")
}

func (api *TaskAPI) getOverdueTasks(ctx *gin.Context) {
	api.listTasks(ctx, models.OverdueTasks(currentUser(ctx).ID, api.now()), "просроченные задачи")
}

func (api *TaskAPI) getTasksDueToday(ctx *gin.Context) {
	api.listTasks(ctx, models.TasksDueOn(currentUser(ctx).ID, api.now(), api.loc), "задачи со сроком сегодня")
}

func (api *TaskAPI) getUpcomingTasks(ctx *gin.Context) {
	api.listTasks(ctx, models.UpcomingTasks(currentUser(ctx).ID, api.now()), "предстоящие задачи")
}

func (api *TaskAPI) searchTasks(ctx *gin.Context) {
	filter, err := models.SearchTasks(currentUser(ctx).ID, ctx.Query("query"))
	if err != nil {
		abortWithError(ctx, err, "")
		return
	}
	api.listTasks(ctx, filter, "результаты поиска")
}

func (api *TaskAPI) updateTask(ctx *gin.Context) {
	user := currentUser(ctx)

	var patch models.TaskPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		badRequest(ctx, err)
		return
	}
	if err := patch.Validate(); err != nil {
		abortWithError(ctx, err, "")
		return
	}

	task, err := api.tasks.UpdateTask(ctx.Request.Context(), user.ID, ctx.Param("id"), patch)
	if err != nil {
		abortWithError(ctx, err, "ошибка обновления задачи")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "задача успешно обновлена",
		"task":    task,
	})
}

func (api *TaskAPI) deleteTask(ctx *gin.Context) {
	user := currentUser(ctx)

	if err := api.tasks.DeleteTask(ctx.Request.Context(), user.ID, ctx.Param("id")); err != nil {
		abortWithError(ctx, err, "ошибка удаления задачи")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "задача успешно удалена"})
}
