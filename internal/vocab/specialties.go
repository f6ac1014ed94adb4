package vocab

// specialtyNames is the closed set of provider specialties. It mirrors the
// CMS provider taxonomy names used by the doctor directory; a diagnosis may
// only ever be routed to one of these.
var specialtyNames = []string{
	"ADDICTION MEDICINE", "ADULT CONGENITAL HEART DISEASE (ACHD)", "ADVANCED HEART FAILURE AND TRANSPLANT CARDIOLOGY",
	"ALLERGY/IMMUNOLOGY", "ANESTHESIOLOGY", "ANESTHESIOLOGY ASSISTANT", "CARDIAC ELECTROPHYSIOLOGY",
	"CARDIAC SURGERY", "CARDIOVASCULAR DISEASE (CARDIOLOGY)", "CERTIFIED CLINICAL NURSE SPECIALIST (CNS)",
	"CERTIFIED NURSE MIDWIFE (CNM)", "CERTIFIED REGISTERED NURSE ANESTHETIST (CRNA)", "CHIROPRACTIC",
	"CLINICAL PSYCHOLOGIST", "CLINICAL SOCIAL WORKER", "COLORECTAL SURGERY (PROCTOLOGY)",
	"CRITICAL CARE (INTENSIVISTS)", "DENTAL ANESTHESIOLOGY", "DENTIST", "DERMATOLOGY",
	"DIAGNOSTIC RADIOLOGY", "EMERGENCY MEDICINE", "ENDOCRINOLOGY", "EPILEPTOLOGISTS",
	"FAMILY PRACTICE", "GASTROENTEROLOGY", "GENERAL PRACTICE", "GENERAL SURGERY",
	"GERIATRIC MEDICINE", "GERIATRIC PSYCHIATRY", "GYNECOLOGICAL ONCOLOGY", "HAND SURGERY",
	"HEMATOLOGY", "HEMATOLOGY/ONCOLOGY", "HEMATOPOIETIC CELL TRANSPLANTATION AND CELLULAR THERAPY",
	"HOSPICE/PALLIATIVE CARE", "HOSPITALIST", "INFECTIOUS DISEASE", "INTERNAL MEDICINE",
	"INTERVENTIONAL CARDIOLOGY", "INTERVENTIONAL PAIN MANAGEMENT", "INTERVENTIONAL RADIOLOGY",
	"MARRIAGE AND FAMILY THERAPIST", "MAXILLOFACIAL SURGERY", "MEDICAL GENETICS AND GENOMICS",
	"MEDICAL ONCOLOGY", "MEDICAL TOXICOLOGY", "MENTAL HEALTH COUNSELOR",
	"MICROGRAPHIC DERMATOLOGIC SURGERY (MDS)", "NEPHROLOGY", "NEUROLOGY", "NEUROPSYCHIATRY",
	"NEUROSURGERY", "NUCLEAR MEDICINE", "NURSE PRACTITIONER", "OBSTETRICS/GYNECOLOGY",
	"OCCUPATIONAL THERAPIST IN PRIVATE PRACTICE", "OPHTHALMOLOGY", "OPTOMETRY",
	"ORAL AND MAXILLOFACIAL PATHOLOGY", "ORAL AND MAXILLOFACIAL RADIOLOGY", "ORAL MEDICINE",
	"ORAL SURGERY", "OROFACIAL PAIN", "ORTHOPEDIC SURGERY", "OSTEOPATHIC MANIPULATIVE MEDICINE",
	"OTOLARYNGOLOGY", "PAIN MANAGEMENT", "PATHOLOGY", "PEDIATRIC MEDICINE", "PERIODONTICS",
	"PERIPHERAL VASCULAR DISEASE", "PHYSICAL MEDICINE AND REHABILITATION",
	"PHYSICAL THERAPIST IN PRIVATE PRACTICE", "PHYSICIAN ASSISTANT",
	"PLASTIC AND RECONSTRUCTIVE SURGERY", "PODIATRY", "PREVENTIVE MEDICINE", "PROSTHODONTICS",
	"PSYCHIATRY", "PULMONARY DISEASE", "QUALIFIED AUDIOLOGIST", "QUALIFIED SPEECH LANGUAGE PATHOLOGIST",
	"RADIATION ONCOLOGY", "REGISTERED DIETITIAN OR NUTRITION PROFESSIONAL", "RHEUMATOLOGY",
	"SLEEP MEDICINE", "SPORTS MEDICINE", "SURGICAL ONCOLOGY", "THORACIC SURGERY",
	"UNDERSEA AND HYPERBARIC MEDICINE", "UROLOGY", "VASCULAR SURGERY",
}
