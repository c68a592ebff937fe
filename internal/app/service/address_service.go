package service

import (
	"errors"

	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/model"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/app/repository"
	"github.com/lucaanasser/nsr-ecommerce-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrAddressNotFound    = errors.New("endereço não encontrado")
	ErrUnauthorizedAccess = errors.New("acesso negado ao endereço")
)

type AddressService interface {
	GetUserAddresses(userID uint) ([]model.Address, error)
	GetAddress(userID, addressID uint) (*model.Address, error)
	CreateAddress(userID uint, address *model.Address) error
	UpdateAddress(userID, addressID uint, updatedAddress *model.Address) error
	DeleteAddress(userID, addressID uint) error
	SetDefaultAddress(userID, addressID uint) error
}

type addressService struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{
		addressRepo: addressRepo,
	}
}

func (s *addressService) GetUserAddresses(userID uint) ([]model.Address, error) {
	logger.Debug("Fetching user addresses", map[string]interface{}{
		"user_id": userID,
	})

	addresses, err := s.addressRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("User addresses fetched successfully", map[string]interface{}{
		"user_id": userID,
		"count":   len(addresses),
	})
	return addresses, nil
}

func (s *addressService) GetAddress(userID, addressID uint) (*model.Address, error) {
	address, err := s.addressRepo.FindByID(addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	if address.UserID != userID {
		logger.Warn("Address ownership mismatch", map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return nil, ErrUnauthorizedAccess
	}
	return address, nil
}

func (s *addressService) CreateAddress(userID uint, address *model.Address) error {
	logger.Info("Creating address", map[string]interface{}{
		"user_id":   userID,
		"label":     address.Label,
		"recipient": address.Recipient,
	})

	zip, err := NormalizeZipCode(address.ZipCode)
	if err != nil {
		return err
	}
	address.ZipCode = zip
	address.UserID = userID

	// primeiro endereço do usuário vira padrão
	count, err := s.addressRepo.CountByUserID(userID)
	if err != nil {
		logger.Error("Failed to check existing addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}
	if count == 0 {
		address.IsDefault = true
		logger.Debug("Setting first address as default", map[string]interface{}{
			"user_id": userID,
		})
	}

	if err := s.addressRepo.Create(address); err != nil {
		logger.Error("Failed to create address", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	// marcado como padrão na criação: limpa os demais
	if address.IsDefault {
		if err := s.addressRepo.SetDefault(userID, address.ID); err != nil {
			logger.Error("Failed to set new address as default", err, map[string]interface{}{
				"user_id":    userID,
				"address_id": address.ID,
			})
			return err
		}
	}

	logger.Info("Address created successfully", map[string]interface{}{
		"address_id": address.ID,
		"user_id":    userID,
	})
	return nil
}

func (s *addressService) UpdateAddress(userID, addressID uint, updatedAddress *model.Address) error {
	logger.Info("Updating address", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	address, err := s.GetAddress(userID, addressID)
	if err != nil {
		return err
	}

	zip, err := NormalizeZipCode(updatedAddress.ZipCode)
	if err != nil {
		return err
	}

	address.Label = updatedAddress.Label
	address.Recipient = updatedAddress.Recipient
	address.Phone = updatedAddress.Phone
	address.ZipCode = zip
	address.Street = updatedAddress.Street
	address.Number = updatedAddress.Number
	address.Complement = updatedAddress.Complement
	address.District = updatedAddress.District
	address.City = updatedAddress.City
	address.State = updatedAddress.State

	if err := s.addressRepo.Update(address); err != nil {
		logger.Error("Failed to update address", err, map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return err
	}

	logger.Info("Address updated successfully", map[string]interface{}{
		"address_id": addressID,
		"user_id":    userID,
	})
	return nil
}

// DeleteAddress remove o endereço. Quando o excluído era o padrão,
// o endereço mais recente restante assume para manter o invariante
// de exatamente um padrão por usuário sempre que houver endereços.
func (s *addressService) DeleteAddress(userID, addressID uint) error {
	logger.Info("Deleting address", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	address, err := s.GetAddress(userID, addressID)
	if err != nil {
		return err
	}

	wasDefault := address.IsDefault

	if err := s.addressRepo.Delete(addressID); err != nil {
		logger.Error("Failed to delete address", err, map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return err
	}

	if wasDefault {
		remaining, err := s.addressRepo.FindByUserID(userID)
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			if err := s.addressRepo.SetDefault(userID, remaining[0].ID); err != nil {
				logger.Error("Failed to promote new default address", err, map[string]interface{}{
					"user_id":    userID,
					"address_id": remaining[0].ID,
				})
				return err
			}
		}
	}

	logger.Info("Address deleted successfully", map[string]interface{}{
		"address_id": addressID,
		"user_id":    userID,
	})
	return nil
}

func (s *addressService) SetDefaultAddress(userID, addressID uint) error {
	logger.Info("Setting default address", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	if err := s.addressRepo.SetDefault(userID, addressID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAddressNotFound
		}
		logger.Error("Failed to set default address", err, map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		return err
	}
	return nil
}
