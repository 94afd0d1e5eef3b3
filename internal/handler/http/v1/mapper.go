package v1

import "github.com/shenikar/disaster_alert_system/internal/models"

// DTOToReportModel преобразует запрос в доменную модель; вердикт заполнит сервис
func DTOToReportModel(dto CreateReportRequest) *models.IncidentReport {
	report := &models.IncidentReport{
		ReporterName:      dto.ReporterName,
		ReporterContact:   dto.ReporterContact,
		Description:       dto.Description,
		IncidentType:      models.IncidentType(dto.IncidentType),
		Urgency:           models.Urgency(dto.Urgency),
		MediaURL:          dto.MediaURL,
		WitnessCount:      dto.WitnessCount,
		EstimatedAffected: dto.EstimatedAffected,
	}
	if dto.Latitude != nil && dto.Longitude != nil {
		report.Location = &models.Location{
			Latitude:  *dto.Latitude,
			Longitude: *dto.Longitude,
			Address:   dto.Address,
		}
	}
	return report
}

// ModelToReportResponse преобразует доменную модель в DTO для ответа
func ModelToReportResponse(model *models.IncidentReport) *ReportResponse {
	resp := &ReportResponse{
		ID:                model.ID,
		ReporterName:      model.ReporterName,
		Description:       model.Description,
		IncidentType:      string(model.IncidentType),
		Urgency:           string(model.Urgency),
		MediaURL:          model.MediaURL,
		WitnessCount:      model.WitnessCount,
		EstimatedAffected: model.EstimatedAffected,
		Status:            string(model.Status),
		Verified:          model.Verified,
		AICategory:        model.AICategory,
		Priority:          string(model.Priority),
		Confidence:        model.Confidence,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
	if model.Location != nil {
		resp.Location = &LocationResponse{
			Latitude:  model.Location.Latitude,
			Longitude: model.Location.Longitude,
			Address:   model.Location.Address,
		}
	}
	for _, n := range model.Notes {
		resp.Notes = append(resp.Notes, NoteResponse{ID: n.ID, Author: n.Author, Text: n.Text, CreatedAt: n.CreatedAt})
	}
	return resp
}

// ModelsToReportResponses преобразует слайс моделей в слайс DTO
func ModelsToReportResponses(models []*models.IncidentReport) []*ReportResponse {
	responses := make([]*ReportResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToReportResponse(model)
	}
	return responses
}
