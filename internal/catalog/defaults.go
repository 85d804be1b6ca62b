package catalog

func defaults() map[string]*Button {
	return map[string]*Button{
		ButtonHelp: {
			Label: "Help",
			Texts: map[string]string{
				"en": "I need help",
				"hi": "मुझे मदद चाहिए",
				"es": "Necesito ayuda",
				"fr": "J'ai besoin d'aide",
				"de": "Ich brauche Hilfe",
				"it": "Ho bisogno di aiuto",
			},
		},
		ButtonMedicine: {
			Label: "Medicines",
			Texts: map[string]string{
				"en": "Time for medicine",
				"hi": "दवा का समय",
				"es": "Hora de la medicina",
				"fr": "Heure du médicament",
				"de": "Zeit für Medizin",
				"it": "Ora della medicina",
			},
		},
		ButtonWater: {
			Label: "Water",
			Texts: map[string]string{
				"en": "I want water",
				"hi": "मुझे पानी चाहिए",
				"es": "Quiero agua",
				"fr": "Je veux de l'eau",
				"de": "Ich möchte Wasser",
				"it": "Voglio acqua",
			},
		},
		ButtonRest: {
			Label: "Rest",
			Texts: map[string]string{
				"en": "I want to rest",
				"hi": "मुझे आराम चाहिए",
				"es": "Quiero descansar",
				"fr": "Je veux me reposer",
				"de": "Ich möchte mich ausruhen",
				"it": "Voglio riposare",
			},
		},
		ButtonCall: {
			Label: "Call Someone",
			Texts: map[string]string{
				"en": "Please call someone",
				"hi": "कृपया किसी को बुलाएं",
				"es": "Por favor llama a alguien",
				"fr": "S'il vous plaît appellez quelqu'un",
				"de": "Bitte rufen Sie jemanden an",
				"it": "Per favore chiama qualcuno",
			},
		},
		ButtonEmergency: {
			Label: "Emergency",
			Texts: map[string]string{
				"en": "Emergency",
				"hi": "आपातकालीन",
				"es": "Emergencia",
				"fr": "Urgence",
				"de": "Notfall",
				"it": "Emergenza",
			},
		},
	}
}
