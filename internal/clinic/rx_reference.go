package clinic

// RxTemplate is a canned starting point for a clinical note, offered to
// doctors in the prescription editor.
type RxTemplate struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Diagnosis    string `json:"diagnosis"`
	Medications  string `json:"medications"`
	Instructions string `json:"instructions"`
	FollowUp     string `json:"follow_up"`
}

// Medication is one entry in the clinic's drug reference list.
type Medication struct {
	Name      string   `json:"name"`
	Strengths []string `json:"strengths"`
	Type      string   `json:"type"`
}

// RxTemplates returns the prescription templates served to the doctor UI.
func RxTemplates() []RxTemplate {
	return []RxTemplate{
		{
			Key:          "antibiotics",
			Name:         "Bacterial Infection",
			Diagnosis:    "Bacterial infection",
			Medications:  "1. Amoxicillin 250mg\n   Sig: Give 1 capsule by mouth twice daily for 10 days\n\n2. Probiotics\n   Sig: Give 1 capsule by mouth once daily during antibiotic treatment",
			Instructions: "Give with food to reduce stomach upset. Complete full course even if symptoms improve.",
			FollowUp:     "Return in 10-14 days for recheck if symptoms persist",
		},
		{
			Key:          "pain_inflammation",
			Name:         "Pain & Inflammation",
			Diagnosis:    "Pain and inflammation",
			Medications:  "1. Carprofen 75mg\n   Sig: Give 1 tablet by mouth once daily with food for 5-7 days\n\n2. Gabapentin 100mg (if severe pain)\n   Sig: Give 1 capsule by mouth twice daily as needed",
			Instructions: "Monitor for appetite changes or vomiting. Discontinue if side effects occur.",
			FollowUp:     "Return if no improvement in 3-5 days or if condition worsens",
		},
		{
			Key:          "skin_condition",
			Name:         "Skin Condition",
			Diagnosis:    "Dermatitis/skin irritation",
			Medications:  "1. Medicated shampoo\n   Sig: Bathe twice weekly, leave on for 10 minutes before rinsing\n\n2. Topical cream\n   Sig: Apply thin layer to affected areas twice daily",
			Instructions: "Keep area clean and dry. Prevent licking with cone if necessary.",
			FollowUp:     "Return in 7-10 days for progress evaluation",
		},
		{
			Key:          "dental",
			Name:         "Dental Care",
			Diagnosis:    "Dental disease/tartar buildup",
			Medications:  "1. Dental chews (prescription)\n   Sig: Give 1 chew daily\n\n2. Oral rinse\n   Sig: Add to water bowl as directed",
			Instructions: "Begin regular tooth brushing routine. Avoid hard bones or toys.",
			FollowUp:     "Schedule dental cleaning in 6 months",
		},
		{
			Key:          "parasite",
			Name:         "Parasite Treatment",
			Diagnosis:    "Intestinal parasites",
			Medications:  "1. Deworming medication\n   Sig: Give as directed based on body weight\n\n2. Fecal exam in 2-3 weeks",
			Instructions: "Pick up stool immediately. Wash hands after handling pet.",
			FollowUp:     "Bring fresh stool sample in 2-3 weeks for recheck",
		},
		{
			Key:          "allergy",
			Name:         "Allergy Management",
			Diagnosis:    "Environmental allergies",
			Medications:  "1. Apoquel 5.4mg\n   Sig: Give 1 tablet by mouth twice daily for 7 days, then once daily\n\n2. Antihistamine\n   Sig: Give 1 tablet by mouth once daily as needed for itching",
			Instructions: "Reduce exposure to allergens. Bathe weekly with hypoallergenic shampoo.",
			FollowUp:     "Return in 3-4 weeks for progress evaluation",
		},
		{
			Key:          "ear_infection",
			Name:         "Ear Infection",
			Diagnosis:    "Otitis externa",
			Medications:  "1. Ear cleaner\n   Sig: Clean ears twice weekly\n\n2. Antibiotic/steroid ear drops\n   Sig: Apply 5 drops in affected ear twice daily for 7 days",
			Instructions: "Keep ears dry. Do not use cotton swabs in ear canal.",
			FollowUp:     "Return in 7-10 days for recheck",
		},
		{
			Key:          "anxiety",
			Name:         "Anxiety Treatment",
			Diagnosis:    "Generalized anxiety",
			Medications:  "1. Trazodone 100mg\n   Sig: Give 1/2 to 1 tablet by mouth as needed for anxiety\n\n2. Adaptil diffuser\n   Sig: Use continuously in main living area",
			Instructions: "Provide safe space. Use calming music during stressful events.",
			FollowUp:     "Return in 4 weeks for behavior assessment",
		},
	}
}

// Medications returns the drug reference list served to the doctor UI.
func Medications() []Medication {
	return []Medication{
		{"Amoxicillin", []string{"250mg", "500mg"}, "Antibiotic"},
		{"Apoquel", []string{"3.6mg", "5.4mg", "16mg"}, "Anti-itch"},
		{"Benazepril", []string{"2.5mg", "5mg", "10mg", "20mg"}, "Cardiac"},
		{"Bravecto", []string{"112.5mg", "250mg", "500mg"}, "Flea/Tick Prevention"},
		{"Carprofen", []string{"25mg", "75mg", "100mg"}, "Anti-inflammatory"},
		{"Cephalexin", []string{"250mg", "500mg"}, "Antibiotic"},
		{"Cerenia", []string{"16mg", "24mg", "60mg"}, "Anti-nausea"},
		{"Clavamox", []string{"62.5mg", "125mg", "250mg"}, "Antibiotic"},
		{"Clindamycin", []string{"25mg", "75mg", "150mg"}, "Antibiotic"},
		{"Diazepam", []string{"2mg", "5mg", "10mg"}, "Behavioral"},
		{"Doxycycline", []string{"50mg", "100mg"}, "Antibiotic"},
		{"Enalapril", []string{"2.5mg", "5mg", "10mg", "20mg"}, "Cardiac"},
		{"Famotidine", []string{"10mg"}, "Stomach Protection"},
		{"Fluoxetine", []string{"10mg", "20mg"}, "Behavioral"},
		{"Furosemide", []string{"12.5mg", "25mg", "50mg"}, "Diuretic"},
		{"Gabapentin", []string{"100mg", "300mg"}, "Pain Management"},
		{"Insulin (Vetsulin)", []string{"40U/ml"}, "Diabetes"},
		{"Ivermectin", []string{"68mcg", "136mcg"}, "Heartworm Prevention"},
		{"Meloxicam", []string{"1.5mg/ml"}, "Anti-inflammatory"},
		{"Metronidazole", []string{"250mg", "500mg"}, "Antibiotic/Anti-diarrheal"},
		{"Mirtazapine", []string{"7.5mg", "15mg"}, "Appetite Stimulant"},
		{"Omeprazole", []string{"10mg", "20mg"}, "Stomach Protection"},
		{"Phenobarbital", []string{"16.2mg", "32.4mg", "64.8mg"}, "Seizure"},
		{"Pimobendan", []string{"1.25mg", "2.5mg", "5mg"}, "Cardiac"},
		{"Praziquantel", []string{"34mg", "136mg"}, "Dewormer"},
		{"Prednisone", []string{"5mg", "10mg", "20mg"}, "Steroid"},
		{"Revolution", []string{"15mg", "30mg", "45mg"}, "Parasite Prevention"},
		{"Simparica", []string{"5mg", "10mg", "20mg"}, "Flea/Tick Prevention"},
		{"Tramadol", []string{"50mg"}, "Pain Management"},
		{"Trazodone", []string{"50mg", "100mg"}, "Behavioral"},
	}
}
