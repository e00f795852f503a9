package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ai-parenting-be/internal/dto"
	"ai-parenting-be/internal/pkg/serverutils"
	"ai-parenting-be/internal/service"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SubmitTurn(ctx *fiber.Ctx) error
	ListConversations(ctx *fiber.Ctx) error
	GetInteractions(ctx *fiber.Ctx) error
	EndConversation(ctx *fiber.Ctx) error
	UpdateMetadata(ctx *fiber.Ctx) error
	ListAgents(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("agents", c.ListAgents)
	h.Post("turn", c.SubmitTurn)
	h.Get("conversations", c.ListConversations)
	h.Get("conversations/:id/interactions", c.GetInteractions)
	h.Post("conversations/:id/end", c.EndConversation)
	h.Put("conversations/:id/metadata", c.UpdateMetadata)
}

func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "missing user identity")
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "invalid user identity")
	}
	return userId, nil
}

func pathId(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid conversation id")
	}
	return id, nil
}

func (c *chatController) SubmitTurn(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var req dto.SubmitTurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SubmitTurn(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success submit turn", res))
}

func (c *chatController) ListConversations(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}

	var query dto.ListConversationsQuery
	if err := ctx.QueryParser(&query); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
	}

	res, err := c.chatService.ListConversations(ctx.Context(), userId, &query)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list conversations", res))
}

func (c *chatController) GetInteractions(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	id, err := pathId(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.GetInteractions(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list interactions", res))
}

func (c *chatController) EndConversation(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	id, err := pathId(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.EndConversation(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success end conversation", res))
}

func (c *chatController) UpdateMetadata(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return err
	}
	id, err := pathId(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateConversationMetadataRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.UpdateMetadata(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update conversation", res))
}

func (c *chatController) ListAgents(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success list agents", c.chatService.ListAgents()))
}
