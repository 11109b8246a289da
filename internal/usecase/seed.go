package usecase

import "github.com/xavierca1/leadbridge/internal/entity"

// SampleLeads is the data a fresh install starts with.
func SampleLeads() []entity.Lead {
	return []entity.Lead{
		{
			ID:              "1",
			Name:            "John Smith",
			Phone:           "+1 (555) 123-4567",
			Tag:             entity.LeadTagHot,
			Status:          entity.LeadStatusQualified,
			LastContactDate: "2023-09-15",
			DateAdded:       "2023-09-01",
			Notes:           "Interested in premium package. Follow up next week.",
			Meetings:        []entity.Meeting{},
		},
		{
			ID:              "2",
			Name:            "Emily Johnson",
			Phone:           "+1 (555) 987-6543",
			Tag:             entity.LeadTagNew,
			Status:          entity.LeadStatusContacted,
			LastContactDate: "2023-09-18",
			DateAdded:       "2023-09-10",
			Notes:           "First contact made. Scheduled intro call for next Monday.",
			Meetings:        []entity.Meeting{},
		},
		{
			ID:              "3",
			Name:            "Michael Brown",
			Phone:           "+1 (555) 456-7890",
			Tag:             entity.LeadTagCold,
			Status:          entity.LeadStatusLost,
			LastContactDate: "2023-08-30",
			DateAdded:       "2023-08-15",
			Notes:           "No response after multiple follow-ups.",
			Meetings:        []entity.Meeting{},
		},
		{
			ID:              "4",
			Name:            "Sarah Wilson",
			Phone:           "+1 (555) 789-0123",
			Tag:             entity.LeadTagHot,
			Status:          entity.LeadStatusNegotiation,
			LastContactDate: "2023-09-17",
			DateAdded:       "2023-09-05",
			Notes:           "Discussing contract details. Needs pricing options.",
			Meetings:        []entity.Meeting{},
		},
		{
			ID:              "5",
			Name:            "David Lee",
			Phone:           "+1 (555) 234-5678",
			Tag:             entity.LeadTagNew,
			Status:          entity.LeadStatusContacted,
			LastContactDate: "2023-09-16",
			DateAdded:       "2023-09-12",
			Notes:           "Responded positively to initial outreach.",
			Meetings:        []entity.Meeting{},
		},
	}
}

func SampleTasks() []entity.Task {
	return []entity.Task{
		{ID: "1", Title: "Follow up with John about proposal", DueDate: "2023-09-25T10:00:00", LeadID: "1"},
		{ID: "2", Title: "Schedule intro call with Emily", DueDate: "2023-09-26T14:30:00", LeadID: "2"},
		{ID: "3", Title: "Send contract to Sarah", DueDate: "2023-09-24T09:00:00", LeadID: "4"},
		{ID: "4", Title: "Check in with David", DueDate: "2023-09-28T11:00:00", LeadID: "5"},
	}
}
