package mapper

import (
	"github.com/atlas-procurement/request-api/internal/domain"
)

const timestampLayout = "2006-01-02T15:04:05Z"

// ToRequesterDTO converts Requester to RequesterDTO
func ToRequesterDTO(requester *domain.Requester) domain.RequesterDTO {
	return domain.RequesterDTO{
		ID:        requester.ID,
		Name:      requester.Name,
		Email:     requester.Email,
		CreatedAt: requester.CreatedAt.Format(timestampLayout),
		UpdatedAt: requester.UpdatedAt.Format(timestampLayout),
	}
}

// ToRequesterDTOs converts a slice of Requesters to DTOs
func ToRequesterDTOs(requesters []domain.Requester) []domain.RequesterDTO {
	dtos := make([]domain.RequesterDTO, len(requesters))
	for i := range requesters {
		dtos[i] = ToRequesterDTO(&requesters[i])
	}
	return dtos
}

// ToBuyerDTO converts Buyer to BuyerDTO
func ToBuyerDTO(buyer *domain.Buyer) domain.BuyerDTO {
	return domain.BuyerDTO{
		ID:        buyer.ID,
		Name:      buyer.Name,
		Email:     buyer.Email,
		CreatedAt: buyer.CreatedAt.Format(timestampLayout),
		UpdatedAt: buyer.UpdatedAt.Format(timestampLayout),
	}
}

// ToBuyerDTOs converts a slice of Buyers to DTOs
func ToBuyerDTOs(buyers []domain.Buyer) []domain.BuyerDTO {
	dtos := make([]domain.BuyerDTO, len(buyers))
	for i := range buyers {
		dtos[i] = ToBuyerDTO(&buyers[i])
	}
	return dtos
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(user *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		IsActive:    user.IsActive,
	}
}

// ToRequestDTO converts Request to RequestDTO. Requester, buyer and owner
// names are included when the relations are loaded.
func ToRequestDTO(request *domain.Request) domain.RequestDTO {
	dto := domain.RequestDTO{
		ID:          request.ID,
		RequesterID: request.RequesterID,
		BuyerID:     request.BuyerID,
		RequestType: request.RequestType,
		PORef:       request.PORef,
		Status:      request.Status,
		Subject:     request.Subject,
		Reference:   request.Reference,
		Object:      request.Object,
		Comments:    request.Comments,
		UserID:      request.UserID,
		CreatedBy:   request.OwnerUsername(),
		CreatedAt:   request.CreatedAt.Format(timestampLayout),
		UpdatedAt:   request.UpdatedAt.Format(timestampLayout),
	}

	if request.Requester != nil {
		dto.RequesterName = request.Requester.Name
	}
	if request.Buyer != nil {
		dto.BuyerName = request.Buyer.Name
	}
	if request.HasAttachment() {
		dto.Attachment = &domain.AttachmentDTO{
			Filename:    request.AttachmentName,
			ContentType: request.AttachmentType,
			Size:        request.AttachmentSize,
		}
	}

	return dto
}

// ToRequestDTOs converts a slice of Requests to DTOs
func ToRequestDTOs(requests []domain.Request) []domain.RequestDTO {
	dtos := make([]domain.RequestDTO, len(requests))
	for i := range requests {
		dtos[i] = ToRequestDTO(&requests[i])
	}
	return dtos
}
