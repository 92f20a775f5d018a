package rules

import "github.com/ppiankov/politikcred/internal/model"

// Default returns the built-in French/English rule table
func Default() Rules {
	return Rules{
		StopWords: []string{
			// French function words
			"avec", "pour", "dans", "nous", "vous", "leur", "leurs", "cette", "cela", "ceci", "sont",
			"etre", "avoir", "fait", "faire", "plus", "moins", "tout", "toute", "toutes", "tous",
			"sans", "sous", "entre", "aussi", "mais", "donc", "ainsi", "comme", "afin", "notre",
			"votre", "elle", "elles", "depuis", "pendant", "apres", "avant", "dont", "quand", "tres",
			"encore", "deja", "chaque", "autre", "autres", "meme", "celui", "celle", "ceux", "selon",
			"vers", "chez", "nouveau", "nouvelle", "nouvelles", "nouveaux", "contre",
			// Commitment verbs carry polarity, not topic
			"engage", "engageons", "promets", "promettons", "veux", "voulons", "ferai", "ferons",
			"allons", "souhaite", "souhaitons", "propose", "proposons", "garantis",
			// Legislative noise left after boilerplate stripping
			"amendement", "article", "alinea", "lecture", "projet", "proposition", "scrutin",
			"ensemble", "texte", "seance", "motion",
			// English
			"will", "that", "this", "with", "from", "have", "been", "were", "they", "their", "there",
			"which", "would", "should", "could", "about", "into", "over", "more", "than", "also",
			"every", "shall", "must", "promise", "commit", "pledge", "amendment", "section", "reading",
		},

		Synonyms: map[string][]string{
			"energie":       {"electricite", "carburant", "chauffage", "nucleaire", "renouvelable", "facture", "energy", "electricity", "fuel", "heating", "nuclear", "renewable", "bill"},
			"impot":         {"impots", "fiscal", "fiscalite", "taxe", "taxes", "prelevement", "contribuable", "taxation", "income tax"},
			"emploi":        {"travail", "chomage", "salaire", "embauche", "employment", "unemployment", "wage", "jobs", "work"},
			"immigration":   {"migrant", "migration", "asile", "frontiere", "etranger", "regularisation", "immigrant", "asylum", "border"},
			"securite":      {"police", "gendarmerie", "delinquance", "criminalite", "terrorisme", "policier", "security", "crime", "policing", "terrorism"},
			"retraite":      {"pension", "cotisation", "retirement", "pensioner"},
			"sante":         {"hopital", "hopitaux", "medecin", "soins", "maladie", "health", "hospital", "doctor"},
			"education":     {"ecole", "enseignant", "professeur", "eleve", "universite", "school", "teacher", "university"},
			"logement":      {"loyer", "habitat", "locataire", "housing", "rent", "tenant"},
			"environnement": {"climat", "climatique", "carbone", "emission", "pollution", "biodiversite", "climate", "carbon", "environment"},
			"agriculture":   {"agriculteur", "paysan", "elevage", "farmer", "farming"},
			"europe":        {"europeen", "europeenne", "bruxelles", "european", "brussels"},
			"budget":        {"finances", "deficit", "dette", "depense", "budgetaire", "debt", "spending"},
			"defense":       {"armee", "militaire", "soldat", "army", "military"},
		},

		Boilerplate: []string{
			`\bl ensemble du (?:projet|texte|budget)\b`,
			`\b(?:projet|proposition) de loi(?: organique| constitutionnelle| de programmation)?\b`,
			`\bsous amendement\b`,
			`\bamendement(?: n)? ?\d+\b`,
			`\barticle (?:\d+|premier|unique|liminaire)(?: (?:bis|ter|quater))?\b`,
			`\b(?:premiere|deuxieme|seconde|nouvelle|derniere) lecture\b`,
			`\bscrutin public(?: solennel)?\b`,
			`\bscrutin(?: n)? ?\d+\b`,
			`\bvote solennel\b`,
			`\ba bill to\b`,
			`\bthe bill\b`,
			`\bamendment(?: no)? ?\d+\b`,
			`\bsection \d+\b`,
			`\b(?:first|second|third) reading\b`,
		},

		StrongCues: []string{
			"je m engage*", "nous nous engage*", "je promet*", "nous promet*", "je vais", "nous allons",
			"je ferai", "nous ferons", "je garanti*", "nous garanti*", "je m y engage",
			"je refuse*", "nous refusons", "je m oppose*", "nous nous opposons", "je voterai*", "nous voterons",
			"je combattrai", "jamais je ne",
			"i will", "we will", "i ll", "we ll", "i promise", "we promise", "i commit*", "we commit*",
			"i pledge", "we pledge", "i guarantee", "we guarantee", "i refuse", "we refuse", "i oppose",
			"we oppose", "i ll never", "i will never",
		},
		WeakCues: []string{
			"nous devons", "il faut", "je souhaite", "nous souhaitons", "je propose*", "nous propos*",
			"notre objectif", "mon objectif", "je veux", "nous voulons",
			"we must", "we should", "we need", "our goal", "my goal", "we aim", "i propose", "we propose",
			"i want", "we want",
		},
		HedgeCues: []string{
			"si", "if", "peut etre", "maybe", "perhaps", "possibly", "eventuellement", "i would like",
			"we would like", "j aimerais", "nous aimerions", "je voudrais", "nous voudrions", "i hope",
			"j espere", "unless", "pourrait", "pourrions", "might",
		},

		Categories: []CategoryBucket{
			{Category: model.CategoryEconomic, Keywords: []string{
				"impot*", "fiscal*", "taxe*", "tax*", "budget*", "econom*", "croissance", "inflation",
				"pouvoir d achat", "salaire*", "emploi*", "chomage", "entreprise*", "dette", "deficit*",
				"tva", "smic", "wage*", "job*", "unemployment", "growth", "debt",
			}},
			{Category: model.CategorySocial, Keywords: []string{
				"retraite*", "pension*", "allocation*", "logement*", "pauvrete", "solidarite", "famille*",
				"handicap*", "housing", "welfare", "retirement", "poverty",
			}},
			{Category: model.CategoryEnvironmental, Keywords: []string{
				"climat*", "environnement*", "ecolog*", "carbone", "energie*", "nucleaire", "renouvelable*",
				"pollution", "biodiversite", "emission*", "climate", "environment*", "energy", "renewable*",
			}},
			{Category: model.CategorySecurity, Keywords: []string{
				"securite", "police*", "policier*", "gendarm*", "delinquance", "terroris*", "criminalite",
				"defense", "armee*", "militaire*", "security", "crime*", "terror*", "military",
			}},
			{Category: model.CategoryHealthcare, Keywords: []string{
				"sante", "hopita*", "medecin*", "soins", "maladie", "pharmac*", "health*", "hospital*",
				"doctor*", "medical",
			}},
			{Category: model.CategoryEducation, Keywords: []string{
				"educat*", "ecole*", "enseignant*", "professeur*", "eleve*", "universit*", "scolaire*",
				"school*", "teacher*", "student*",
			}},
			{Category: model.CategoryJustice, Keywords: []string{
				"justice", "tribuna*", "juge*", "prison*", "penal*", "magistrat*", "court*", "judge*",
				"sentenc*",
			}},
			{Category: model.CategoryImmigration, Keywords: []string{
				"immigr*", "migrant*", "migrat*", "asile", "frontiere*", "regularisation*", "asylum", "border*",
			}},
			{Category: model.CategoryForeignPolicy, Keywords: []string{
				"diplomat*", "international*", "otan", "nato", "ukraine", "russie", "chine", "onu",
				"europe*", "affaires etrangeres", "foreign", "treaty", "sanction*",
			}},
		},

		MeasurableCues: []string{
			"milliard*", "million*", "pour cent", "percent", "d ici", "avant la fin", "by the end", "within",
		},
		ActionableCues: []string{
			"vote*", "voter*", "loi", "lois", "law*", "bill", "abrog*", "supprim*", "creer", "cree*",
			"creat*", "reduir*", "redui*", "baiss*", "augment*", "interdi*", "ban", "construir*",
			"financ*", "investi*", "recrut*", "ferm*", "ouvr*", "reform*", "abolish*", "cut", "raise",
			"build", "hire", "repeal*", "introduc*", "legisl*", "refus*", "oppos*", "increas*",
			"support*", "soutenir", "soutien*",
		},

		OppositionCues: []string{
			"refus*", "oppos*", "m oppose*", "voterai contre", "voterons contre", "rejet*", "bloquer*",
			"block*", "reject*", "jamais", "never", "censur*", "vote against",
		},
		PositiveCues: []string{
			"engage*", "commit*", "promet*", "promis*", "will", "vais", "allons", "ferai", "ferons",
			"creer*", "cree*", "creat*", "construir*", "build*", "renforc*", "strengthen*", "proteg*",
			"protect*", "soutenir", "soutien*", "support*", "garanti*", "guarantee*", "defend*",
			"develop*", "investi*", "augment*", "increase*", "improv*", "ameliorer*",
		},
		ReductionCues: []string{
			"reduir*", "redui*", "baiss*", "diminu*", "supprim*", "abolir*", "aboli*", "abolish*",
			"interdi*", "ban", "bans", "banning", "reduc*", "cut", "cuts", "abrog*", "repeal*", "limit*",
		},

		Inversion: []string{
			`\bmotion de censure\b`,
			`\bmotion (?:of )?no confidence\b`,
			`\bno confidence motion\b`,
			`\bvote of no confidence\b`,
			`\bmotion de rejet(?: prealable)?\b`,
			`\bmotion to reject\b`,
			`\bamendement de suppression\b`,
			`\bamendement(?: n ?\d+)? (?:visant|tendant) a supprimer\b`,
			`\bsuppression amendment\b`,
			`\bamendment to (?:strike|delete|remove)\b`,
		},

		Positions: map[model.Position][]string{
			model.PositionFor:     {"pour", "for", "yes", "yea", "aye", "oui", "favorable"},
			model.PositionAgainst: {"contre", "against", "no", "nay", "non"},
			model.PositionAbstain: {"abstention", "abstain", "abstenu", "abstenue", "abstained"},
			model.PositionAbsent:  {"absent", "absente", "non votant", "nonvotant", "not voting", "excuse", "excused"},
		},
	}
}
