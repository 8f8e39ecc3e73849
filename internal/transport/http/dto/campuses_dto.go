package dto

type CreateCampusRequest struct {
	Name        string `json:"name"`
	ShortName   string `json:"short_name"`
	Description string `json:"description"`
}

type CampusResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ShortName   string `json:"short_name"`
	Description string `json:"description"`
}

type CampusesResponse struct {
	Campuses []CampusResponse `json:"campuses"`
}
